// Package ask orchestrates the query pipeline: classify, vectorize, search,
// synthesize. One pass per request, no retries across stages.
package ask

import (
	"context"
	"fmt"
	"time"

	"github.com/peroute/concierge/internal/domain"
	"github.com/peroute/concierge/internal/metrics"
)

// Answer is the pipeline result returned to the transport layer.
type Answer struct {
	Text    string
	Intent  domain.Intent
	Results []domain.ScoredEntry
}

// Service is the query orchestrator. Only a classification failure is
// terminal; every later stage carries its own fallback.
type Service struct {
	classifier  Classifier
	vectorizer  domain.Vectorizer
	searcher    Searcher
	synthesizer Synthesizer
}

// New creates the orchestrator.
func New(c Classifier, v domain.Vectorizer, s Searcher, syn Synthesizer) *Service {
	return &Service{classifier: c, vectorizer: v, searcher: s, synthesizer: syn}
}

// Ask answers a user question. Casual chat returns the classifier's reply
// directly; search intents run the full pipeline. A cancelled context aborts
// without producing a partial answer.
func (s *Service) Ask(ctx context.Context, question string) (Answer, error) {
	start := time.Now()

	intent, err := s.classifier.Classify(ctx, question)
	if err != nil {
		metrics.AskRequestsTotal.WithLabelValues("unknown", "error").Inc()
		return Answer{}, fmt.Errorf("classify: %w", err)
	}

	if !intent.IsSearch() {
		metrics.AskRequestsTotal.WithLabelValues("casual_chat", "success").Inc()
		metrics.AskDuration.WithLabelValues("casual_chat").Observe(time.Since(start).Seconds())
		return Answer{Text: intent.Message, Intent: intent}, nil
	}

	answer, err := s.answerSearch(ctx, question, intent)
	if err != nil {
		metrics.AskRequestsTotal.WithLabelValues("search", "error").Inc()
		return Answer{}, err
	}

	metrics.AskRequestsTotal.WithLabelValues("search", "success").Inc()
	metrics.AskDuration.WithLabelValues("search").Observe(time.Since(start).Seconds())
	return answer, nil
}

func (s *Service) answerSearch(ctx context.Context, question string, intent domain.Intent) (Answer, error) {
	phrase := intent.SearchPhrase
	if phrase == "" {
		phrase = question
	}

	vector, err := s.vectorizer.Embed(ctx, phrase)
	if err != nil {
		// Vectorizer chains absorb provider errors; what remains is
		// cancellation, which must not yield a partial answer.
		return Answer{}, fmt.Errorf("vectorize: %w", err)
	}

	entries, err := s.searcher.Search(ctx, vector)
	if err != nil {
		return Answer{}, fmt.Errorf("search: %w", err)
	}

	if ctx.Err() != nil {
		return Answer{}, ctx.Err()
	}

	text := s.synthesizer.Synthesize(ctx, question, intent.DraftMessage, entries)
	return Answer{Text: text, Intent: intent, Results: entries}, nil
}
