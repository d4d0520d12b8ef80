package chat

import "time"

type Chat struct {
	ID        string    `gorm:"primaryKey;type:varchar(26)" json:"id"`
	UserID    uint64    `gorm:"index;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Chat) TableName() string { return "chats" }

type Message struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ChatID    string    `gorm:"type:varchar(26);index;not null" json:"chat_id"`
	Role      string    `gorm:"type:varchar(16);not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (Message) TableName() string { return "messages" }
