// Package synthesis turns ranked catalog entries into a user-facing answer,
// preferring generative prose with a deterministic template as the fallback.
package synthesis

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/peroute/concierge/internal/domain"
	"github.com/peroute/concierge/internal/logger"
)

// noResultsNotice is appended to the draft message when the search produced
// nothing. Fixed text so callers and tests can rely on it.
const noResultsNotice = " Unfortunately, I couldn't find any matching resources in the catalog. Try rephrasing your question or asking about something else."

const systemInstruction = `You are a helpful campus resource assistant.
Given the user's question and a ranked list of matching resources, write a concise, conversational answer.
Reference the most relevant resources with markdown links in the form [Title](URL).
Keep the order of relevance from the list. Do not invent resources that are not in the list.`

// Service composes final answers from scored entries.
type Service struct {
	generator domain.TextGenerator
}

// New creates a result synthesizer.
func New(generator domain.TextGenerator) *Service {
	return &Service{generator: generator}
}

// Synthesize builds the final answer text.
//
// Empty results return the draft plus a fixed notice without touching the
// backend. A backend failure degrades to a deterministic template preserving
// the input order; it never propagates.
func (s *Service) Synthesize(ctx context.Context, question, draft string, entries []domain.ScoredEntry) string {
	if len(entries) == 0 {
		return draft + noResultsNotice
	}

	answer, err := s.generator.Generate(ctx,
		systemInstruction,
		"User question: "+question,
		"Assistant draft: "+draft,
		"Matching resources:\n"+formatEntries(entries),
	)
	if err != nil {
		logger.FromContext(ctx).Warn("synthesis backend failed, using template",
			zap.Error(err))
		return templateAnswer(draft, entries)
	}
	return answer
}

// formatEntries renders the structured summary the backend reasons over.
func formatEntries(entries []domain.ScoredEntry) string {
	var b strings.Builder
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. %s | %s | %s | %s | relevance %.2f\n",
			i+1, e.Entry.Title, e.Entry.Description, e.Entry.Category, e.Entry.URL, e.Score)
	}
	return b.String()
}

// templateAnswer is the deterministic fallback: draft message followed by a
// numbered markdown list in the original ranking order.
func templateAnswer(draft string, entries []domain.ScoredEntry) string {
	var b strings.Builder
	b.WriteString(draft)
	b.WriteString("\n\n")
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. [%s](%s)\n%s\n", i+1, e.Entry.Title, e.Entry.URL, e.Entry.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}
