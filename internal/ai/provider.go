package ai

import "context"

// Message is one turn of conversation context, oldest first.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Result is the outcome of a single-shot generation. Backend failure is
// reported in-band: Text carries an apology and Model is "error".
type Result struct {
	Text  string
	Model string
}

// Provider is the inference backend contract. Neither method fails to the
// caller: chat flows must always produce some user-visible response.
type Provider interface {
	Chat(ctx context.Context, messages []Message, temperature float64) Result

	// StreamChat returns a finite, non-restartable sequence of non-empty
	// fragments. On backend failure it yields exactly one apology fragment
	// and ends.
	StreamChat(ctx context.Context, messages []Message, temperature float64) <-chan string
}
