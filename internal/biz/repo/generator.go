package repo

import "context"

// GeneratorRepo is the text-generation interface
type GeneratorRepo interface {
	// Generate returns the upstream text for prompt
	Generate(ctx context.Context, prompt string) (string, error)
}
