/*
Package provider defines the external capability contracts consumed by the
classification core and an OpenAI-compatible HTTP implementation of both.

The core never depends on a concrete model: it embeds text through Embedder
and requests destination suggestions through Suggester. Both are served by
any OpenAI-compatible endpoint (llama.cpp, Ollama, OpenAI itself).
*/
package provider

import "context"

// Embedder produces fixed-length embedding vectors for text.
type Embedder interface {
	// Embed returns the embedding vector for text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the fixed vector dimensionality.
	Dimension() int
}

// Suggester produces a free-text reply to a structured classification prompt.
type Suggester interface {
	// Suggest sends the prompt and returns the raw reply text.
	Suggest(ctx context.Context, prompt string) (string, error)
}
