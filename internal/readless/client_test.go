package readless

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess_SendsContentAndOperation(t *testing.T) {
	var gotBody map[string]any
	var gotCT, gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotCT = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &gotBody)
		w.Write([]byte("Q: what?\nA: this."))
	}))
	defer srv.Close()

	c := New(srv.URL + "/api/readless/process")
	out, err := c.Process(context.Background(), "some selected text", OpQA)
	require.NoError(t, err)

	assert.Equal(t, "Q: what?\nA: this.", out)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/readless/process", gotPath)
	assert.Equal(t, "application/json", gotCT)
	assert.Equal(t, map[string]any{"content": "some selected text", "operation": "qa"}, gotBody)
}

func TestProcess_NonOKStatus(t *testing.T) {
	for _, code := range []int{http.StatusBadRequest, http.StatusInternalServerError, http.StatusBadGateway} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
			w.Write([]byte("boom"))
		}))

		_, err := New(srv.URL).Process(context.Background(), "x", OpQA)
		srv.Close()

		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, code, se.Code)
		assert.Contains(t, err.Error(), strconv.Itoa(code))
	}
}

func TestProcess_AcceptsAny2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte("queued"))
	}))
	defer srv.Close()

	out, err := New(srv.URL).Process(context.Background(), "x", OpQA)
	require.NoError(t, err)
	assert.Equal(t, "queued", out)
}

func TestProcess_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url).Process(context.Background(), "x", OpQA)
	var ne *NetworkError
	require.ErrorAs(t, err, &ne)
}

func TestProcess_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(srv.URL).Process(ctx, "x", OpQA)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestNew_DefaultEndpoint(t *testing.T) {
	assert.Equal(t, DefaultEndpoint, New("").Endpoint)
}

func TestNormalizeOperation(t *testing.T) {
	assert.Equal(t, OpSummarize, NormalizeOperation("  "))
	assert.Equal(t, "qa", NormalizeOperation(" QA "))
	assert.Equal(t, "translate:spanish", NormalizeOperation("Translate:Spanish"))
}

func TestKnownOperation(t *testing.T) {
	for _, op := range Operations {
		assert.True(t, KnownOperation(op), op)
	}
	assert.True(t, KnownOperation("translate:si"))
	assert.False(t, KnownOperation("translate:"))
	assert.False(t, KnownOperation("rewrite:pirate"))
	assert.False(t, KnownOperation("dance"))
}
