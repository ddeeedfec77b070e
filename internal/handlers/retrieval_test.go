package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"oncolife-rag-gateway/internal/retrieval"
)

type mockRetriever struct {
	bundle     retrieval.Bundle
	err        error
	calls      int
	lastSet    []string
	lastTTL    int
	lastLimits retrieval.Limits
}

func (m *mockRetriever) CachedRetrieve(_ context.Context, symptoms []string, ttlSeconds int, limits retrieval.Limits) (retrieval.Bundle, error) {
	m.calls++
	m.lastSet = symptoms
	m.lastTTL = ttlSeconds
	m.lastLimits = limits
	if m.err != nil {
		return retrieval.Bundle{}, m.err
	}
	return m.bundle, nil
}

func TestRetrieveHappyPath(t *testing.T) {
	sc := 0.9
	mock := &mockRetriever{
		bundle: retrieval.Bundle{
			CTCAE:     []retrieval.Record{{Text: "grade 2 nausea", Version: "v5", Score: &sc}},
			Questions: []retrieval.Record{},
			TriageKB:  []retrieval.Record{},
		},
	}
	h := NewRetrievalHandler(mock)

	ttl := 120
	two := 2
	zero := 0
	payload, _ := json.Marshal(RetrievalRequest{
		Symptoms:   []string{"Nausea", " FATIGUE "},
		TTLSeconds: ttl,
		Limits:     &LimitsPayload{CTCAE: &two, Questions: &zero},
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/retrieval", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	h.Retrieve(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp retrieval.Bundle
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.CTCAE) != 1 || resp.CTCAE[0].Text != "grade 2 nausea" {
		t.Fatalf("unexpected bundle: %+v", resp)
	}

	if mock.calls != 1 {
		t.Fatalf("expected one retriever call, got %d", mock.calls)
	}
	if mock.lastTTL != 120 {
		t.Fatalf("ttl not forwarded: %d", mock.lastTTL)
	}
	if mock.lastLimits.CTCAE != 2 || mock.lastLimits.Questions != 0 || mock.lastLimits.TriageKB != retrieval.DefaultLimit {
		t.Fatalf("limits not applied: %+v", mock.lastLimits)
	}
}

func TestRetrieveDefaultsLimitsWhenOmitted(t *testing.T) {
	mock := &mockRetriever{bundle: retrieval.Bundle{}}
	h := NewRetrievalHandler(mock)

	req := httptest.NewRequest(http.MethodPost, "/v1/retrieval",
		bytes.NewReader([]byte(`{"symptoms":["rash"]}`)))
	rr := httptest.NewRecorder()

	h.Retrieve(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if mock.lastLimits != retrieval.DefaultLimits() {
		t.Fatalf("expected default limits, got %+v", mock.lastLimits)
	}
}

func TestRetrieveInvalidJSON(t *testing.T) {
	h := NewRetrievalHandler(&mockRetriever{})

	req := httptest.NewRequest(http.MethodPost, "/v1/retrieval", bytes.NewReader([]byte("{nope")))
	rr := httptest.NewRecorder()

	h.Retrieve(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestRetrieveUpstreamFailure(t *testing.T) {
	h := NewRetrievalHandler(&mockRetriever{err: errors.New("all paths failed")})

	req := httptest.NewRequest(http.MethodPost, "/v1/retrieval",
		bytes.NewReader([]byte(`{"symptoms":["rash"]}`)))
	rr := httptest.NewRecorder()

	h.Retrieve(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rr.Code)
	}
}

type mockFlusher struct {
	deleted int
	err     error
}

func (m *mockFlusher) FlushCache(context.Context) (int, error) {
	return m.deleted, m.err
}

func TestFlushCache(t *testing.T) {
	h := NewAdminHandler(&mockFlusher{deleted: 7})

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/cache/flush", nil)
	rr := httptest.NewRecorder()

	h.FlushCache(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp flushResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Deleted != 7 {
		t.Fatalf("expected 7 deleted, got %d", resp.Deleted)
	}
}

func TestFlushCacheFailure(t *testing.T) {
	h := NewAdminHandler(&mockFlusher{err: errors.New("redis down")})

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/cache/flush", nil)
	rr := httptest.NewRecorder()

	h.FlushCache(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}
