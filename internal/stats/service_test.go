package stats

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"llamachat/internal/ai"
)

type recordingProvider struct {
	reply string
	model string
	last  []ai.Message
}

func (p *recordingProvider) Chat(ctx context.Context, messages []ai.Message, temperature float64) ai.Result {
	_ = ctx
	_ = temperature
	p.last = append([]ai.Message(nil), messages...)
	model := p.model
	if model == "" {
		model = "fake"
	}
	return ai.Result{Text: p.reply, Model: model}
}

func (p *recordingProvider) StreamChat(ctx context.Context, messages []ai.Message, temperature float64) <-chan string {
	_ = ctx
	_ = temperature
	p.last = append([]ai.Message(nil), messages...)
	out := make(chan string, 1)
	out <- p.reply
	close(out)
	return out
}

func TestGeneratePromptShape(t *testing.T) {
	prov := &recordingProvider{reply: "lots of numbers"}
	svc := NewService(prov)

	svc.Generate(context.Background(), "population of France", DefaultSource, nil, 0.7)

	if len(prov.last) != 2 {
		t.Fatalf("expected system + user messages, got %d", len(prov.last))
	}
	if prov.last[0].Role != "system" || !strings.Contains(prov.last[0].Content, "statistics assistant") {
		t.Fatalf("unexpected system prompt: %+v", prov.last[0])
	}
	user := prov.last[1]
	if user.Role != "user" || !strings.Contains(user.Content, "population of France") {
		t.Fatalf("user prompt does not embed the query: %+v", user)
	}
	if strings.Contains(user.Content, "previous conversation") {
		t.Fatalf("context note added without history")
	}
}

func TestGenerateHistoryHandling(t *testing.T) {
	prov := &recordingProvider{reply: "ok"}
	svc := NewService(prov)

	history := []ai.Message{
		{Role: "system", Content: "should be dropped"},
		{Role: "user", Content: "earlier question"},
		{Role: "assistant", Content: "earlier answer"},
	}
	svc.Generate(context.Background(), "and now?", DefaultSource, history, 0.7)

	// own system prompt + 2 surviving history turns + new user turn
	if len(prov.last) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(prov.last))
	}
	for _, m := range prov.last[1:] {
		if m.Content == "should be dropped" {
			t.Fatalf("system history turn was not excluded")
		}
	}
	if prov.last[1].Content != "earlier question" || prov.last[2].Content != "earlier answer" {
		t.Fatalf("history not ahead of the new turn: %+v", prov.last[1:3])
	}
	if !strings.Contains(prov.last[3].Content, "previous conversation") {
		t.Fatalf("context note missing when history present")
	}
}

func TestGenerateMetadata(t *testing.T) {
	prov := &recordingProvider{reply: "stats here", model: "llama3.2"}
	svc := NewService(prov)

	got := svc.Generate(context.Background(), "q", "Eurostat", nil, 0.7)
	if got.Response != "stats here" {
		t.Fatalf("response not passed through: %q", got.Response)
	}
	if got.Source != "Eurostat" {
		t.Fatalf("source not passed through verbatim: %q", got.Source)
	}
	if got.Model != "llama3.2" {
		t.Fatalf("model not passed through: %q", got.Model)
	}
	if !regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`).MatchString(got.Date) {
		t.Fatalf("date not YYYY-MM-DD: %q", got.Date)
	}
	if got.Date != time.Now().Format("2006-01-02") {
		t.Fatalf("date is not today: %q", got.Date)
	}

	// empty source falls back to the default label
	got = svc.Generate(context.Background(), "q", "", nil, 0.7)
	if got.Source != DefaultSource {
		t.Fatalf("default source not applied: %q", got.Source)
	}
}

func TestGenerateStreamUsesSamePrompt(t *testing.T) {
	prov := &recordingProvider{reply: "chunked"}
	svc := NewService(prov)

	out := svc.GenerateStream(context.Background(), "query", nil, 0.7)
	var got []string
	for f := range out {
		got = append(got, f)
	}
	if len(got) != 1 || got[0] != "chunked" {
		t.Fatalf("unexpected fragments: %q", got)
	}
	if len(prov.last) != 2 || prov.last[0].Role != "system" {
		t.Fatalf("stream prompt differs from blocking prompt: %+v", prov.last)
	}
}
