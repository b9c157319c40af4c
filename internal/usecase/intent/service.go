// Package intent classifies user text into search requests and casual chat
// through a generative backend constrained to a JSON reply contract.
package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/peroute/concierge/internal/domain"
)

// systemInstruction constrains the backend to the JSON reply contract. The
// field names are load-bearing: the parser reads exactly these keys.
const systemInstruction = `You are an intent classifier for a campus resource assistant.
Analyze the user's message and reply with exactly one JSON object, no other text.

If the user is looking for a campus resource, service, place, or information that could be found in a resource catalog, reply:
{"isSearching": true, "searchQuery": "<short search phrase capturing what they need>", "userMessage": "<brief acknowledgement to show the user while searching>"}

Otherwise, for greetings, small talk, or questions unrelated to campus resources, reply:
{"isSearching": false, "userMessage": "<your conversational reply>"}`

// classifierReply is the JSON shape the backend is instructed to produce.
type classifierReply struct {
	IsSearching bool   `json:"isSearching"`
	SearchQuery string `json:"searchQuery"`
	UserMessage string `json:"userMessage"`
}

// Service classifies user text via a generative backend.
type Service struct {
	generator domain.TextGenerator
}

// New creates an intent classifier.
func New(generator domain.TextGenerator) *Service {
	return &Service{generator: generator}
}

// Classify sends userText to the backend and parses the reply.
//
// Non-JSON output degrades to a casual-chat intent carrying the raw text
// verbatim. Only a backend failure itself propagates as an error; with no
// usable text there is nothing to degrade to.
func (s *Service) Classify(ctx context.Context, userText string) (domain.Intent, error) {
	raw, err := s.generator.Generate(ctx, systemInstruction, userText)
	if err != nil {
		return domain.Intent{}, fmt.Errorf("classify intent: %w", err)
	}

	cleaned := cleanCodeFences(raw)

	var reply classifierReply
	if jsonErr := json.Unmarshal([]byte(cleaned), &reply); jsonErr != nil {
		return domain.NewCasualIntent(raw), nil
	}

	if reply.IsSearching {
		return domain.NewSearchIntent(reply.SearchQuery, reply.UserMessage), nil
	}
	return domain.NewCasualIntent(reply.UserMessage), nil
}

// cleanCodeFences strips markdown code-fence markers and surrounding
// whitespace. Models often wrap JSON in a fenced block despite instructions.
func cleanCodeFences(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	}
	return strings.TrimSpace(cleaned)
}
