package llm

import (
	"context"
	"errors"
	"testing"
)

type asyncOnlyClient struct {
	response string
	err      error
}

func (c *asyncOnlyClient) Generate(ctx context.Context, prompt string) (string, error) {
	return "", errors.New("Generate should not be called when GenerateAsync is available")
}

func (c *asyncOnlyClient) GenerateAsync(ctx context.Context, prompt string) (string, error) {
	return c.response, c.err
}

func TestInvokePrefersAsyncGenerator(t *testing.T) {
	client := &asyncOnlyClient{response: "async response"}

	got, err := Invoke(context.Background(), client, "prompt")
	if err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}
	if got != "async response" {
		t.Fatalf("Invoke() = %q, want %q", got, "async response")
	}
}

func TestInvokeFallsBackToSyncGenerate(t *testing.T) {
	client := &MockClient{Response: "sync response"}

	got, err := Invoke(context.Background(), client, "prompt")
	if err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}
	if got != "sync response" {
		t.Fatalf("Invoke() = %q, want %q", got, "sync response")
	}
}
