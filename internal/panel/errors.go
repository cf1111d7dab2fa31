package panel

import (
	"errors"
	"fmt"

	"github.com/lotas/readless/internal/readless"
)

// ErrNoSelection reports that the active tab had no selected text. It is
// informational: the panel shows NoSelectionMessage, not an error.
var ErrNoSelection = errors.New(NoSelectionMessage)

// TabError wraps a failure to find the active tab or read its selection.
type TabError struct {
	Op  string
	Err error
}

func (e *TabError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TabError) Unwrap() error {
	return e.Err
}

// Kind classifies a Summarize outcome.
type Kind int

const (
	KindNone Kind = iota
	KindNoSelection
	KindTab
	KindNetwork
	KindStatus
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNoSelection:
		return "no-selection"
	case KindTab:
		return "tab"
	case KindNetwork:
		return "network"
	case KindStatus:
		return "status"
	default:
		return "other"
	}
}

// Classify maps an error returned by Summarize to its Kind.
func Classify(err error) Kind {
	var (
		tabErr    *TabError
		netErr    *readless.NetworkError
		statusErr *readless.StatusError
	)
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrNoSelection):
		return KindNoSelection
	case errors.As(err, &tabErr):
		return KindTab
	case errors.As(err, &statusErr):
		return KindStatus
	case errors.As(err, &netErr):
		return KindNetwork
	default:
		return KindOther
	}
}
