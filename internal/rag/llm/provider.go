package llm

import "context"

// Provider generates an answer from an already-assembled grounded prompt.
// Implementations classify transport failures as generation faults so the
// pipeline can decide on its single retry.
type Provider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}
