package intent

import (
	"context"
	"errors"
	"testing"
)

type mockGenerator struct {
	reply    string
	err      error
	segments []string
}

func (m *mockGenerator) Generate(_ context.Context, segments ...string) (string, error) {
	m.segments = segments
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func TestService_Classify_SearchIntent(t *testing.T) {
	gen := &mockGenerator{
		reply: `{"isSearching": true, "searchQuery": "library hours", "userMessage": "Let me check."}`,
	}
	svc := New(gen)

	got, err := svc.Classify(context.Background(), "when does the library open?")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	if !got.IsSearch() {
		t.Fatal("expected search intent")
	}
	if got.SearchPhrase != "library hours" {
		t.Errorf("SearchPhrase = %q, want %q", got.SearchPhrase, "library hours")
	}
	if got.DraftMessage != "Let me check." {
		t.Errorf("DraftMessage = %q, want %q", got.DraftMessage, "Let me check.")
	}

	if len(gen.segments) != 2 || gen.segments[1] != "when does the library open?" {
		t.Errorf("user text not passed to backend: %v", gen.segments)
	}
}

func TestService_Classify_CodeFencedJSON(t *testing.T) {
	fenced := "```json\n{\"isSearching\": true, \"searchQuery\": \"gym hours\", \"userMessage\": \"One sec.\"}\n```  \n"
	svc := New(&mockGenerator{reply: fenced})

	got, err := svc.Classify(context.Background(), "gym?")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if !got.IsSearch() || got.SearchPhrase != "gym hours" || got.DraftMessage != "One sec." {
		t.Errorf("fenced JSON not parsed identically to plain JSON: %+v", got)
	}
}

func TestService_Classify_CasualChat(t *testing.T) {
	svc := New(&mockGenerator{
		reply: `{"isSearching": false, "userMessage": "Hi there! How can I help?"}`,
	})

	got, err := svc.Classify(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if got.IsSearch() {
		t.Fatal("expected casual intent")
	}
	if got.Message != "Hi there! How can I help?" {
		t.Errorf("Message = %q", got.Message)
	}
}

func TestService_Classify_MissingIsSearchingDefaultsToCasual(t *testing.T) {
	svc := New(&mockGenerator{reply: `{"userMessage": "Sure."}`})

	got, err := svc.Classify(context.Background(), "hey")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if got.IsSearch() {
		t.Error("absent isSearching must classify as casual chat")
	}
	if got.Message != "Sure." {
		t.Errorf("Message = %q, want %q", got.Message, "Sure.")
	}
}

func TestService_Classify_NonJSONDegradesToRawText(t *testing.T) {
	raw := "Sure, here's a fun fact about Texas Tech..."
	svc := New(&mockGenerator{reply: raw})

	got, err := svc.Classify(context.Background(), "tell me something")
	if err != nil {
		t.Fatalf("non-JSON output must not fail: %v", err)
	}
	if got.IsSearch() {
		t.Fatal("expected casual intent for non-JSON output")
	}
	if got.Message != raw {
		t.Errorf("Message = %q, want raw backend text verbatim", got.Message)
	}
}

func TestService_Classify_MissingSearchFieldsDefaultEmpty(t *testing.T) {
	svc := New(&mockGenerator{reply: `{"isSearching": true}`})

	got, err := svc.Classify(context.Background(), "find stuff")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if !got.IsSearch() {
		t.Fatal("expected search intent")
	}
	if got.SearchPhrase != "" || got.DraftMessage != "" {
		t.Errorf("missing fields must default to empty, got %+v", got)
	}
}

func TestService_Classify_BackendErrorPropagates(t *testing.T) {
	backendErr := errors.New("backend unreachable")
	svc := New(&mockGenerator{err: backendErr})

	_, err := svc.Classify(context.Background(), "anything")
	if !errors.Is(err, backendErr) {
		t.Fatalf("expected backend error to propagate, got %v", err)
	}
}

func TestCleanCodeFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"trailing whitespace", "  ```json\n{\"a\":1}\n```\n\t", `{"a":1}`},
		{"no fences just space", "  {\"a\":1}  ", `{"a":1}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := cleanCodeFences(tc.input); got != tc.want {
				t.Errorf("cleanCodeFences(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
