package stats

import (
	"context"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, req *Request) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *Repo) GetByID(ctx context.Context, id uint64) (*Request, error) {
	var req Request
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *Repo) ListByUser(ctx context.Context, userID uint64) ([]Request, error) {
	var reqs []Request
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}
