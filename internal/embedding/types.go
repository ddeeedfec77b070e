package embedding

import "context"

// Embedder converts text into a fixed-dimension vector. Implemented by
// Client; retrieval depends on this interface so tests can stub the
// embedding service.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Request shape we send upstream (OpenAI-style).
type providerEmbeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type providerEmbeddingData struct {
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

type providerEmbeddingResponse struct {
	Model string                  `json:"model"`
	Data  []providerEmbeddingData `json:"data"`
	Usage *providerUsage          `json:"usage,omitempty"`
}

type providerUsage struct {
	PromptTokens int `json:"prompt_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

type providerErrorResponse struct {
	Error struct {
		Message string      `json:"message"`
		Type    string      `json:"type"`
		Code    interface{} `json:"code"`
	} `json:"error"`
}
