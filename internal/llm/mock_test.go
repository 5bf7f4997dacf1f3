package llm

import (
	"context"
	"errors"
	"testing"
)

func TestSequenceMockClientReturnsInOrder(t *testing.T) {
	client := &SequenceMockClient{Responses: []string{"first", "second", "third"}}

	for i, want := range client.Responses {
		got, err := client.Generate(context.Background(), "prompt")
		if err != nil {
			t.Fatalf("call %d: unexpected error %v", i, err)
		}
		if got != want {
			t.Fatalf("call %d = %q, want %q", i, got, want)
		}
	}
	if client.Calls() != 3 {
		t.Fatalf("Calls() = %d, want 3", client.Calls())
	}
}

func TestSequenceMockClientRepeatsLastAfterExhaustion(t *testing.T) {
	client := &SequenceMockClient{Responses: []string{"only"}}

	client.Generate(context.Background(), "p")
	got, _ := client.Generate(context.Background(), "p")

	if got != "only" {
		t.Fatalf("Generate() after exhaustion = %q, want %q", got, "only")
	}
}

func TestSequenceMockClientReturnsScriptedErrors(t *testing.T) {
	boom := errors.New("boom")
	client := &SequenceMockClient{
		Responses: []string{"ok", "bad"},
		Errs:      []error{nil, boom},
	}

	if _, err := client.Generate(context.Background(), "p"); err != nil {
		t.Fatalf("first call: unexpected error %v", err)
	}
	if _, err := client.Generate(context.Background(), "p"); err != boom {
		t.Fatalf("second call err = %v, want %v", err, boom)
	}
}
