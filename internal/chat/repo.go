package chat

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"llamachat/internal/common"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) CreateChat(ctx context.Context, userID uint64) (*Chat, error) {
	id, err := common.NewULID()
	if err != nil {
		return nil, err
	}
	c := &Chat{ID: id, UserID: userID}
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

func (r *Repo) GetChat(ctx context.Context, chatID string) (*Chat, error) {
	var c Chat
	if err := r.db.WithContext(ctx).First(&c, "id = ?", chatID).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListChatsByUser returns the user's chats, most recently touched first.
func (r *Repo) ListChatsByUser(ctx context.Context, userID uint64) ([]Chat, error) {
	var chats []Chat
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&chats).Error; err != nil {
		return nil, err
	}
	return chats, nil
}

// DeleteChat removes the chat and all its messages in one transaction.
// The messages→chat cascade is enforced here, not by the database.
func (r *Repo) DeleteChat(ctx context.Context, chatID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chat_id = ?", chatID).Delete(&Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Chat{}, "id = ?", chatID).Error
	})
}

// AppendMessage inserts the message and bumps the parent chat's updated_at
// in the same transaction. updated_at never moves backwards.
func (r *Repo) AppendMessage(ctx context.Context, chatID, role, content string) (*Message, error) {
	m := &Message{ChatID: chatID, Role: role, Content: content}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		return tx.Model(&Chat{}).
			Where("id = ? AND updated_at < ?", chatID, time.Now()).
			Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *Repo) ListMessages(ctx context.Context, chatID string) ([]Message, error) {
	var msgs []Message
	if err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

// OwnershipCheck reports whether the chat exists and belongs to userID.
func (r *Repo) OwnershipCheck(ctx context.Context, chatID string, userID uint64) (bool, error) {
	var c Chat
	if err := r.db.WithContext(ctx).First(&c, "id = ?", chatID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return c.UserID == userID, nil
}
