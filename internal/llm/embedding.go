package llm

import "context"

// EmbeddingClient is the embedding adapter consumed by RAG collaborators
// (spec §6): embed(text) -> vector. It is not part of the core generation
// path -- narrative.EmotionalEnricher's optional SimilarBeatRecall hook is
// the only core caller, using it together with the beat repository's
// pgvector search when a host wires both in.
type EmbeddingClient interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}
