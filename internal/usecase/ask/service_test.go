package ask

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/peroute/concierge/internal/domain"
	"github.com/peroute/concierge/internal/metrics"
	"github.com/peroute/concierge/internal/usecase/intent"
	"github.com/peroute/concierge/internal/usecase/search"
	"github.com/peroute/concierge/internal/usecase/synthesis"
	"github.com/peroute/concierge/internal/usecase/vectorizer"
)

func init() {
	metrics.RegisterPipelineMetrics()
}

type mockClassifier struct {
	intent domain.Intent
	err    error
}

func (m *mockClassifier) Classify(_ context.Context, _ string) (domain.Intent, error) {
	if m.err != nil {
		return domain.Intent{}, m.err
	}
	return m.intent, nil
}

type mockSearcher struct {
	entries []domain.ScoredEntry
	err     error
	lastVec []float32
}

func (m *mockSearcher) Search(_ context.Context, vector []float32) ([]domain.ScoredEntry, error) {
	m.lastVec = vector
	if m.err != nil {
		return nil, m.err
	}
	return m.entries, nil
}

type mockSynthesizer struct {
	text  string
	calls int
}

func (m *mockSynthesizer) Synthesize(_ context.Context, _, _ string, _ []domain.ScoredEntry) string {
	m.calls++
	return m.text
}

func TestService_CasualChatShortCircuits(t *testing.T) {
	searcher := &mockSearcher{}
	syn := &mockSynthesizer{}
	svc := New(
		&mockClassifier{intent: domain.NewCasualIntent("Hello! How can I help?")},
		vectorizer.NewAnchor(8),
		searcher,
		syn,
	)

	got, err := svc.Ask(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if got.Text != "Hello! How can I help?" {
		t.Errorf("unexpected answer: %q", got.Text)
	}
	if searcher.lastVec != nil || syn.calls != 0 {
		t.Error("casual chat must not run the search pipeline")
	}
}

func TestService_SearchPipeline(t *testing.T) {
	entries := []domain.ScoredEntry{
		{Entry: domain.CatalogEntry{ID: "a", Title: "Library"}, Score: 0.91},
	}
	searcher := &mockSearcher{entries: entries}
	syn := &mockSynthesizer{text: "Try the [Library](url)."}
	svc := New(
		&mockClassifier{intent: domain.NewSearchIntent("library hours", "Let me check.")},
		vectorizer.NewAnchor(8),
		searcher,
		syn,
	)

	got, err := svc.Ask(context.Background(), "when is the library open?")
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if got.Text != "Try the [Library](url)." {
		t.Errorf("unexpected answer: %q", got.Text)
	}
	if len(got.Results) != 1 || got.Results[0].Entry.ID != "a" {
		t.Errorf("results not carried through: %v", got.Results)
	}
	if len(searcher.lastVec) != 8 {
		t.Errorf("expected 8-dim query vector, got %d", len(searcher.lastVec))
	}
}

func TestService_ClassifyErrorIsTerminal(t *testing.T) {
	backendErr := errors.New("backend unreachable")
	svc := New(&mockClassifier{err: backendErr}, vectorizer.NewAnchor(8), &mockSearcher{}, &mockSynthesizer{})

	_, err := svc.Ask(context.Background(), "anything")
	if !errors.Is(err, backendErr) {
		t.Fatalf("expected classifier error to propagate, got %v", err)
	}
}

func TestService_EmptySearchPhraseFallsBackToQuestion(t *testing.T) {
	searcher := &mockSearcher{}
	svc := New(
		&mockClassifier{intent: domain.NewSearchIntent("", "On it.")},
		vectorizer.NewAnchor(8),
		searcher,
		&mockSynthesizer{},
	)

	if _, err := svc.Ask(context.Background(), "where can I park?"); err != nil {
		t.Fatalf("Ask failed: %v", err)
	}

	anchor := vectorizer.NewAnchor(8)
	want, _ := anchor.Embed(context.Background(), "where can I park?")
	for i := range want {
		if searcher.lastVec[i] != want[i] {
			t.Fatalf("query vector not derived from the raw question (dim %d)", i)
		}
	}
}

func TestService_CancellationProducesNoPartialAnswer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := New(
		&mockClassifier{intent: domain.NewSearchIntent("library", "ok")},
		vectorizer.NewAnchor(8),
		&mockSearcher{err: context.Canceled},
		&mockSynthesizer{text: "should never appear"},
	)

	got, err := svc.Ask(ctx, "q")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if got.Text != "" {
		t.Errorf("cancelled request produced partial answer: %q", got.Text)
	}
}

// TestService_EndToEnd wires the real pipeline services with a scripted
// generative backend and a descending three-hit index.
func TestService_EndToEnd(t *testing.T) {
	gen := &scriptedGenerator{
		classifyReply: `{"isSearching": true, "searchQuery": "quiet study spots", "userMessage": "Let me look."}`,
		synthesisErr:  errors.New("backend down"), // forces the deterministic template
	}

	entries := []domain.ScoredEntry{
		{Entry: domain.CatalogEntry{Title: "Library", URL: "https://example.edu/lib", Description: "Quiet floors"}, Score: 0.91},
		{Entry: domain.CatalogEntry{Title: "Study Lounge", URL: "https://example.edu/lounge", Description: "Open late"}, Score: 0.85},
		{Entry: domain.CatalogEntry{Title: "Garden", URL: "https://example.edu/garden", Description: "Outdoor seating"}, Score: 0.77},
	}

	svc := New(
		intent.New(gen),
		vectorizer.NewAnchor(16),
		search.New(&mockIndexBackend{entries: entries}, &emptyCatalog{}, search.Config{TopK: 3, CandidatePool: 30, MinScore: 0.1}),
		synthesis.New(gen),
	)

	got, err := svc.Ask(context.Background(), "Where can I study quietly on campus?")
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}

	links := []string{
		"[Library](https://example.edu/lib)",
		"[Study Lounge](https://example.edu/lounge)",
		"[Garden](https://example.edu/garden)",
	}
	lastIdx := -1
	for _, link := range links {
		idx := strings.Index(got.Text, link)
		if idx < 0 {
			t.Fatalf("answer missing link %q:\n%s", link, got.Text)
		}
		if idx < lastIdx {
			t.Fatalf("links out of descending-score order:\n%s", got.Text)
		}
		lastIdx = idx
	}
}

// scriptedGenerator answers the first call with the classifier reply and
// fails subsequent calls when synthesisErr is set.
type scriptedGenerator struct {
	classifyReply string
	synthesisErr  error
	calls         int
}

func (g *scriptedGenerator) Generate(_ context.Context, _ ...string) (string, error) {
	g.calls++
	if g.calls == 1 {
		return g.classifyReply, nil
	}
	if g.synthesisErr != nil {
		return "", g.synthesisErr
	}
	return "ok", nil
}

type mockIndexBackend struct {
	entries []domain.ScoredEntry
}

func (m *mockIndexBackend) Search(_ context.Context, _ []float32, _ int) ([]domain.ScoredEntry, error) {
	return m.entries, nil
}

type emptyCatalog struct{}

func (emptyCatalog) All(_ context.Context) ([]domain.CatalogEntry, error) { return nil, nil }
