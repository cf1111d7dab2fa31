package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content *geminiContent `json:"content"`
	} `json:"candidates"`
}

// Gemini prompts the Google Generative Language generateContent API.
type Gemini struct {
	URL    string // full generateContent URL
	APIKey string
	HTTP   *http.Client
}

// NewGemini returns a Gemini generator.
func NewGemini(endpoint, apiKey string) *Gemini {
	return &Gemini{URL: endpoint, APIKey: apiKey, HTTP: http.DefaultClient}
}

// Generate sends prompt as a single user turn and returns the text of the
// first part of the first candidate, or "" when the answer has none.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	if g.APIKey == "" {
		return "", fmt.Errorf("gemini: no API key configured (set GEMINI_API_KEY)")
	}
	body, err := json.Marshal(geminiRequest{Contents: []geminiContent{{
		Role:  "user",
		Parts: []geminiPart{{Text: prompt}},
	}}})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// Header, not query: transport errors quote the URL.
	req.Header.Set("x-goog-api-key", g.APIKey)

	resp, err := g.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read gemini response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("gemini error: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	return extractGeminiText(data)
}

func extractGeminiText(data []byte) (string, error) {
	var r geminiResponse
	if err := json.Unmarshal(data, &r); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if len(r.Candidates) == 0 {
		return "", nil
	}
	c := r.Candidates[0].Content
	if c == nil || len(c.Parts) == 0 {
		return "", nil
	}
	return c.Parts[0].Text, nil
}
