package llm

import "context"

// Client abstracts the generation provider used by the analyzer.
// Implementations must be concurrency-safe if used across goroutines.
type Client interface {
	// Generate sends a system prompt and a user payload and returns the
	// raw text of the provider's single response.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	// SourceName returns a short provider label for logs (e.g. "ChatGPT").
	SourceName() string
}
