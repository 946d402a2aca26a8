package domain

import (
	"context"
	"errors"
	"testing"
)

type stubEmbedder struct {
	result EmbeddingResult
	err    error
	got    string
}

func (s *stubEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	s.got = text
	return s.result, s.err
}

type healthyStub struct {
	stubEmbedder
	healthErr error
}

func (s *healthyStub) HealthCheck(context.Context) error { return s.healthErr }

func TestDimensionGuard_Passes(t *testing.T) {
	inner := &stubEmbedder{result: EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}}}
	g := NewDimensionGuard(inner, 3)

	res, err := g.Embed(context.Background(), "Arthur Ashkin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.got != "Arthur Ashkin" {
		t.Errorf("inner got %q", inner.got)
	}
	if len(res.Embedding) != 3 {
		t.Errorf("expected 3-element vector, got %d", len(res.Embedding))
	}
}

func TestDimensionGuard_Mismatch(t *testing.T) {
	inner := &stubEmbedder{result: EmbeddingResult{Embedding: []float32{0.1}}}
	g := NewDimensionGuard(inner, 128)

	_, err := g.Embed(context.Background(), "x")
	if !errors.Is(err, ErrVectorDimMismatch) {
		t.Fatalf("expected ErrVectorDimMismatch, got %v", err)
	}
}

func TestDimensionGuard_ErrorPropagation(t *testing.T) {
	innerErr := errors.New("provider down")
	g := NewDimensionGuard(&stubEmbedder{err: innerErr}, 128)

	_, err := g.Embed(context.Background(), "x")
	if !errors.Is(err, innerErr) {
		t.Errorf("expected inner error, got %v", err)
	}
}

func TestDimensionGuard_HealthCheck(t *testing.T) {
	down := errors.New("down")
	g := NewDimensionGuard(&healthyStub{healthErr: down}, 1)
	if err := g.HealthCheck(context.Background()); !errors.Is(err, down) {
		t.Errorf("expected forwarded health error, got %v", err)
	}

	plain := NewDimensionGuard(&stubEmbedder{}, 1)
	if err := plain.HealthCheck(context.Background()); err != nil {
		t.Errorf("expected nil for embedder without health check, got %v", err)
	}
}
