package embcache

import (
	"context"
	"errors"
	"testing"

	"github.com/peroute/concierge/internal/db"
)

type mockKV struct {
	data   map[string][]byte
	getErr error
	setErr error
}

func newMockKV() *mockKV {
	return &mockKV{data: make(map[string][]byte)}
}

func (m *mockKV) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockKV) Set(_ context.Context, key string, value []byte) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

type mockVectorizer struct {
	vec   []float32
	err   error
	calls int
}

func (m *mockVectorizer) Embed(_ context.Context, _ string) ([]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.vec, nil
}

func (m *mockVectorizer) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for range texts {
		v, err := m.Embed(ctx, "")
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func TestVectorizer_MissThenHit(t *testing.T) {
	inner := &mockVectorizer{vec: []float32{0.5, 0.25}}
	kv := newMockKV()
	v := New(inner, kv, "concierge:")

	first, err := v.Embed(context.Background(), "library hours")
	if err != nil {
		t.Fatalf("first Embed failed: %v", err)
	}
	second, err := v.Embed(context.Background(), "library hours")
	if err != nil {
		t.Fatalf("second Embed failed: %v", err)
	}

	if inner.calls != 1 {
		t.Errorf("expected 1 inner call, got %d", inner.calls)
	}
	if len(first) != len(second) {
		t.Fatalf("vector length mismatch: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("cached vector[%d] = %f, want %f", i, second[i], first[i])
		}
	}
}

func TestVectorizer_DifferentTextsDoNotCollide(t *testing.T) {
	inner := &mockVectorizer{vec: []float32{1}}
	v := New(inner, newMockKV(), "concierge:")

	if _, err := v.Embed(context.Background(), "alpha"); err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if _, err := v.Embed(context.Background(), "beta"); err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if inner.calls != 2 {
		t.Errorf("expected 2 inner calls for distinct texts, got %d", inner.calls)
	}
}

func TestVectorizer_CacheReadErrorFallsThrough(t *testing.T) {
	inner := &mockVectorizer{vec: []float32{0.1}}
	kv := newMockKV()
	kv.getErr = errors.New("connection reset")
	v := New(inner, kv, "concierge:")

	vec, err := v.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vec) != 1 || inner.calls != 1 {
		t.Errorf("expected inner vectorizer to serve the request")
	}
}

func TestVectorizer_CacheWriteErrorIsIgnored(t *testing.T) {
	inner := &mockVectorizer{vec: []float32{0.1}}
	kv := newMockKV()
	kv.setErr = errors.New("readonly replica")
	v := New(inner, kv, "concierge:")

	if _, err := v.Embed(context.Background(), "text"); err != nil {
		t.Errorf("cache write failure must not fail embedding: %v", err)
	}
}

func TestVectorizer_InnerErrorPropagates(t *testing.T) {
	innerErr := errors.New("provider down")
	v := New(&mockVectorizer{err: innerErr}, newMockKV(), "concierge:")

	if _, err := v.Embed(context.Background(), "text"); !errors.Is(err, innerErr) {
		t.Errorf("expected inner error, got %v", err)
	}
}

func TestVectorizer_EmbedBatchUsesCache(t *testing.T) {
	inner := &mockVectorizer{vec: []float32{0.2}}
	v := New(inner, newMockKV(), "concierge:")

	texts := []string{"same", "same", "other"}
	vecs, err := v.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedBatch failed: %v", err)
	}
	if len(vecs) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(vecs))
	}
	if inner.calls != 2 {
		t.Errorf("expected 2 inner calls (one per distinct text), got %d", inner.calls)
	}
}
