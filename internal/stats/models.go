package stats

import "time"

// Request is a persisted statistics query and its full formatted answer.
// It is immutable once created and independent of any chat transcript.
type Request struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint64    `gorm:"index;not null" json:"-"`
	RequestInfo string    `gorm:"type:text;not null" json:"request_info"`
	Response    string    `gorm:"type:text;not null" json:"response"`
	Source      string    `gorm:"type:varchar(255);not null" json:"source"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Request) TableName() string { return "statistics_requests" }
