package llm

import "context"

// AsyncGenerator is implemented by LLM clients that expose a native async
// generation path. GenerateAsync(ctx, prompt) -> (string, error) that
// returns once the engine's native async mechanism completes.
type AsyncGenerator interface {
	GenerateAsync(ctx context.Context, prompt string) (string, error)
}

// Invoke prefers a client's native AsyncGenerator when available, falling
// back to the synchronous LLMClient.Generate otherwise. Since Go has no
// distinct sync/async call surface, both paths are ordinary blocking calls
// from the caller's perspective; callers wanting concurrency run Invoke in
// their own goroutine.
func Invoke(ctx context.Context, client LLMClient, prompt string) (string, error) {
	if async, ok := client.(AsyncGenerator); ok {
		return async.GenerateAsync(ctx, prompt)
	}
	return client.Generate(ctx, prompt)
}
