package domain

// IntentKind tags the classified purpose of a user query.
type IntentKind string

const (
	// IntentSearch means the query needs catalog retrieval.
	IntentSearch IntentKind = "search"
	// IntentCasualChat means the query is conversation, answered directly.
	IntentCasualChat IntentKind = "casual_chat"
)

// Intent is the tagged result of classification. It is produced once per
// request and never re-derived downstream.
//
// For IntentSearch, SearchPhrase carries the extracted search terms and
// DraftMessage the classifier's lead-in text. For IntentCasualChat, Message
// is the complete user-facing reply.
type Intent struct {
	Kind         IntentKind
	SearchPhrase string
	DraftMessage string
	Message      string
}

// NewSearchIntent creates a retrieval intent.
func NewSearchIntent(searchPhrase, draftMessage string) Intent {
	return Intent{Kind: IntentSearch, SearchPhrase: searchPhrase, DraftMessage: draftMessage}
}

// NewCasualIntent creates a conversational intent.
func NewCasualIntent(message string) Intent {
	return Intent{Kind: IntentCasualChat, Message: message}
}

// IsSearch reports whether the intent requires retrieval.
func (i Intent) IsSearch() bool { return i.Kind == IntentSearch }
