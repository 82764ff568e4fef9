package data

import (
	"context"

	"github.com/dailycheer/cheer-notifier/internal/biz/repo"
)

// Completer is the part of the OpenAI client the generator needs
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// generatorRepo implements the Generator repository
type generatorRepo struct {
	client Completer
}

// NewGeneratorRepo creates a generator repository. A nil client disables generation.
func NewGeneratorRepo(client Completer) repo.GeneratorRepo {
	if client == nil {
		return nil
	}
	return &generatorRepo{client: client}
}

// Generate returns the completion for prompt
func (r *generatorRepo) Generate(ctx context.Context, prompt string) (string, error) {
	return r.client.Complete(ctx, prompt)
}
