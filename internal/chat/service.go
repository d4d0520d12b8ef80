package chat

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"llamachat/internal/ai"
	"llamachat/internal/stats"
)

// Service orchestrates chat turns: ownership, history, persistence and the
// statistics-backed generation, for both the blocking and streaming paths.
type Service struct {
	repo  *Repo
	stats *stats.Service
	log   *slog.Logger
}

func NewService(repo *Repo, statsSvc *stats.Service, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, stats: statsSvc, log: log}
}

func (s *Service) CreateChat(ctx context.Context, userID uint64) (*Chat, error) {
	return s.repo.CreateChat(ctx, userID)
}

func (s *Service) ListChats(ctx context.Context, userID uint64) ([]Chat, error) {
	return s.repo.ListChatsByUser(ctx, userID)
}

// requireOwnership fails with gorm.ErrRecordNotFound for both absent and
// foreign chats; callers must not be able to tell the two apart.
func (s *Service) requireOwnership(ctx context.Context, userID uint64, chatID string) error {
	owned, err := s.repo.OwnershipCheck(ctx, chatID, userID)
	if err != nil {
		return err
	}
	if !owned {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *Service) DeleteChat(ctx context.Context, userID uint64, chatID string) error {
	if err := s.requireOwnership(ctx, userID, chatID); err != nil {
		return err
	}
	return s.repo.DeleteChat(ctx, chatID)
}

func (s *Service) Messages(ctx context.Context, userID uint64, chatID string) ([]Message, error) {
	if err := s.requireOwnership(ctx, userID, chatID); err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, chatID)
}

// history loads the chat's prior turns in provider shape, oldest first.
func (s *Service) history(ctx context.Context, chatID string) ([]ai.Message, error) {
	msgs, err := s.repo.ListMessages(ctx, chatID)
	if err != nil {
		return nil, err
	}
	out := make([]ai.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, ai.Message{Role: m.Role, Content: m.Content})
	}
	return out, nil
}

// SendMessage runs one blocking chat turn. The user turn is persisted before
// generation so a crash mid-generation still preserves it; generation itself
// cannot fail the request (the provider degrades to apology text).
func (s *Service) SendMessage(ctx context.Context, userID uint64, chatID, message string, temperature float64) (response, model string, err error) {
	if err := s.requireOwnership(ctx, userID, chatID); err != nil {
		return "", "", err
	}

	history, err := s.history(ctx, chatID)
	if err != nil {
		return "", "", err
	}

	if _, err := s.repo.AppendMessage(ctx, chatID, "user", message); err != nil {
		return "", "", err
	}

	result := s.stats.Generate(ctx, message, stats.DefaultSource, history, temperature)

	formatted := ensureQuestionHeader(result.Response, message)
	if !hasSourceLine(formatted) {
		formatted += sourceFooter(result.Source, result.Date)
	}

	if _, err := s.repo.AppendMessage(ctx, chatID, "assistant", formatted); err != nil {
		return "", "", err
	}

	return formatted, result.Model, nil
}

// SendMessageStream runs one streaming chat turn. Fragments are forwarded as
// produced while being accumulated for persistence. The question header can
// only be fixed up in the stored copy (fragments cannot be un-sent), whereas
// a missing source footer is appended to the stored copy and emitted as one
// final live fragment. If the caller goes away mid-stream, forwarding stops
// but the turn is still drained and persisted in full.
func (s *Service) SendMessageStream(ctx context.Context, userID uint64, chatID, message string, temperature float64) (<-chan string, <-chan error) {
	fragments := make(chan string, 16)
	errs := make(chan error, 1)

	go func() {
		defer close(fragments)
		defer close(errs)

		if err := s.requireOwnership(ctx, userID, chatID); err != nil {
			errs <- err
			return
		}

		history, err := s.history(ctx, chatID)
		if err != nil {
			errs <- err
			return
		}

		if _, err := s.repo.AppendMessage(ctx, chatID, "user", message); err != nil {
			errs <- err
			return
		}

		// Generation and the final persist outlive a client disconnect.
		genCtx := context.WithoutCancel(ctx)
		stream := s.stats.GenerateStream(genCtx, message, history, temperature)

		var buf strings.Builder
		markerSeen := false
		forwarding := true

		for frag := range stream {
			buf.WriteString(frag)

			if !markerSeen {
				head := buf.String()
				if len(head) > 200 {
					head = head[:200]
				}
				if strings.Contains(head, "Question:") {
					markerSeen = true
				}
			}

			if forwarding {
				select {
				case fragments <- frag:
				case <-ctx.Done():
					forwarding = false
				}
			}
		}

		full := buf.String()
		if full == "" {
			return
		}

		// Storage-only fix-up: the live viewer already missed the opening.
		if !markerSeen {
			full = questionMarker + " " + message + "\n\n" + full
		}

		if !hasSourceLine(full) {
			footer := sourceFooter(stats.DefaultSource, time.Now().Format("2006-01-02"))
			full += footer
			if forwarding {
				select {
				case fragments <- footer:
				case <-ctx.Done():
				}
			}
		}

		if _, err := s.repo.AppendMessage(genCtx, chatID, "assistant", full); err != nil {
			s.log.Error("persisting streamed assistant message failed",
				"chat_id", chatID, "error", err)
			errs <- err
		}
	}()

	return fragments, errs
}

// CreateMirror builds the companion chat for a statistics request: a fresh
// chat holding the query and the raw model response as one Q&A exchange.
func (s *Service) CreateMirror(ctx context.Context, userID uint64, query, response string) error {
	c, err := s.repo.CreateChat(ctx, userID)
	if err != nil {
		return err
	}
	if _, err := s.repo.AppendMessage(ctx, c.ID, "user", query); err != nil {
		return err
	}
	if _, err := s.repo.AppendMessage(ctx, c.ID, "assistant", response); err != nil {
		return err
	}
	return nil
}
