package llm

import "context"

// MockClient permite tests sin llamar a un LLM real.
type MockClient struct {
	Response       string
	Err            error
	Embedding      []float32
	EmbeddingError error
}

func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	return m.Response, m.Err
}

func (m *MockClient) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if m.EmbeddingError != nil {
		return nil, m.EmbeddingError
	}
	return m.Embedding, nil
}

// SequenceMockClient returns one queued response per call, in order,
// repeating the last response once the queue is exhausted. Useful for
// exercising the enricher's multi-call classify/rewrite/reclassify loop
// where each successive LLM call must return a different scripted value.
type SequenceMockClient struct {
	Responses []string
	Errs      []error
	calls     int
}

func (m *SequenceMockClient) Generate(ctx context.Context, prompt string) (string, error) {
	i := m.calls
	if i >= len(m.Responses) {
		i = len(m.Responses) - 1
	}
	m.calls++

	var err error
	if i >= 0 && i < len(m.Errs) {
		err = m.Errs[i]
	}
	if i < 0 {
		return "", err
	}
	return m.Responses[i], err
}

// Calls reports how many times Generate has been invoked.
func (m *SequenceMockClient) Calls() int {
	return m.calls
}
