package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"oncolife-rag-gateway/internal/metrics"

	"go.uber.org/zap"
)

// Embed sends one text to the embeddings endpoint and returns its vector.
// Failures are returned to the caller unchanged; retrieval decides whether
// a fallback path exists.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(providerEmbeddingRequest{
		Model: c.cfg.Model,
		Input: text,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.UpstreamTimeout)
	defer cancel()

	c.logger.Debug("embedding request",
		zap.Int("text_len", len(text)),
		zap.String("model", c.cfg.Model),
	)
	metrics.EmbeddingCallsTotal.Inc()

	resp, err := c.doWithRetry(ctx, body, c.postEmbeddings)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embedding response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var perr providerErrorResponse
		if json.Unmarshal(raw, &perr) == nil && perr.Error.Message != "" {
			return nil, fmt.Errorf("embedding upstream status %d: %s", resp.StatusCode, perr.Error.Message)
		}
		return nil, fmt.Errorf("embedding upstream status %d", resp.StatusCode)
	}

	var parsed providerEmbeddingResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}
	if len(parsed.Data) == 0 || len(parsed.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("embedding response contained no vector")
	}

	return parsed.Data[0].Embedding, nil
}

func (c *Client) postEmbeddings(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	return c.httpClient.Do(req)
}
