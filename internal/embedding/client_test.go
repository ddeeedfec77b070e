package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestEmbedRequestShape(t *testing.T) {
	var gotAuth string
	var gotReq providerEmbeddingRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(providerEmbeddingResponse{
			Model: "text-embedding-3-small",
			Data:  []providerEmbeddingData{{Index: 0, Embedding: []float32{0.1, 0.2, 0.3}}},
		})
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, APIKey: "sk-test"}, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer c.Close()

	vec, err := c.Embed(context.Background(), "nausea")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	if len(vec) != 3 || vec[0] != 0.1 {
		t.Fatalf("unexpected vector: %v", vec)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if gotReq.Model != "text-embedding-3-small" || gotReq.Input != "nausea" {
		t.Fatalf("unexpected request: %+v", gotReq)
	}
}

func TestEmbedRetriesOnServerError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(providerEmbeddingResponse{
			Data: []providerEmbeddingData{{Embedding: []float32{1}}},
		})
	}))
	defer srv.Close()

	c, err := NewClient(Config{
		BaseURL:     srv.URL,
		APIKey:      "sk-test",
		MaxRetries:  2,
		BaseBackoff: time.Millisecond,
	}, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer c.Close()

	vec, err := c.Embed(context.Background(), "rash")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 1 {
		t.Fatalf("unexpected vector: %v", vec)
	}
	if calls != 2 {
		t.Fatalf("expected 2 upstream calls, got %d", calls)
	}
}

func TestEmbedSurfacesClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, APIKey: "sk-bad"}, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer c.Close()

	if _, err := c.Embed(context.Background(), "rash"); err == nil {
		t.Fatalf("expected error on 401")
	}
}

func TestConfigValidate(t *testing.T) {
	if _, err := NewClient(Config{APIKey: "k"}, nil); err == nil {
		t.Fatalf("expected error for missing BaseURL")
	}
	if _, err := NewClient(Config{BaseURL: "https://api.openai.com"}, nil); err == nil {
		t.Fatalf("expected error for missing APIKey")
	}
}
