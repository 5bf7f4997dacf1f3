package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPClientGenerateParsesFirstChoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Messages[0].Content != "tell a story" {
			t.Errorf("unexpected prompt forwarded: %q", req.Messages[0].Content)
		}
		json.NewEncoder(w).Encode(chatResponse{
			Choices: []struct {
				Message chatMessage `json:"message"`
			}{{Message: chatMessage{Role: "assistant", Content: "once upon a time"}}},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "test-key", nil)
	out, err := c.Generate(context.Background(), "tell a story")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if out != "once upon a time" {
		t.Fatalf("Generate = %q, want %q", out, "once upon a time")
	}
}

func TestHTTPClientGenerateNoChoicesIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatResponse{})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "test-key", nil)
	if _, err := c.Generate(context.Background(), "hello"); err == nil {
		t.Fatalf("expected an error for an empty choices list")
	}
}

func TestHTTPClientGenerateNonOKStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "test-key", nil)
	if _, err := c.Generate(context.Background(), "hello"); err == nil {
		t.Fatalf("expected an error for a non-200 response")
	}
}

func TestHTTPClientCreateEmbeddingParsesFirstVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(embeddingResponse{
			Data: []struct {
				Embedding []float32 `json:"embedding"`
			}{{Embedding: []float32{0.1, 0.2, 0.3}}},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "test-key", nil).WithModel("embed-model")
	vec, err := c.CreateEmbedding(context.Background(), "some text")
	if err != nil {
		t.Fatalf("CreateEmbedding returned error: %v", err)
	}
	if len(vec) != 3 || vec[0] != 0.1 {
		t.Fatalf("unexpected embedding vector: %v", vec)
	}
}
