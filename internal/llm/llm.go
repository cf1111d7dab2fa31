// Package llm holds the language model backends the processing service
// can prompt.
package llm

import "context"

// Generator answers a single prompt with text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
