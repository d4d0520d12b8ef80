package stats

import (
	"context"
	"time"

	"llamachat/internal/ai"
)

// DefaultSource labels statistics answers that carry no caller-supplied
// provenance.
const DefaultSource = "AI Generated"

// Statistics is a generated answer plus its presentation metadata. Response
// is the raw model text; header/footer fix-up is the caller's concern.
type Statistics struct {
	Response string
	Source   string
	Date     string
	Model    string
}

type Service struct {
	provider ai.Provider
}

func NewService(provider ai.Provider) *Service {
	return &Service{provider: provider}
}

// Generate answers a statistics query in one shot. Backend failure never
// surfaces as an error: the provider's apology sentinel flows through as the
// response text with Model "error".
func (s *Service) Generate(ctx context.Context, query, source string, history []ai.Message, temperature float64) Statistics {
	if source == "" {
		source = DefaultSource
	}

	res := s.provider.Chat(ctx, buildMessages(query, history), temperature)

	return Statistics{
		Response: res.Text,
		Source:   source,
		Date:     time.Now().Format("2006-01-02"),
		Model:    res.Model,
	}
}

// GenerateStream is Generate over the incremental provider contract: the
// same prompt, exposed as a lazy fragment sequence.
func (s *Service) GenerateStream(ctx context.Context, query string, history []ai.Message, temperature float64) <-chan string {
	return s.provider.StreamChat(ctx, buildMessages(query, history), temperature)
}
