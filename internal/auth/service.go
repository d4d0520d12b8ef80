package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"llamachat/internal/common"
	"llamachat/internal/models"
)

// SessionCache is an optional read-through cache in front of the sessions
// table. The table stays the source of truth; expiry is always enforced from
// the stored timestamp.
type SessionCache interface {
	GetSession(ctx context.Context, id string) (*models.Session, bool, error)
	SaveSession(ctx context.Context, s *models.Session) error
	DeleteSession(ctx context.Context, id string) error
}

type Service struct {
	db    *gorm.DB
	cache SessionCache
	ttl   time.Duration
	log   *slog.Logger
}

func NewService(db *gorm.DB, cache SessionCache, sessionTTL time.Duration, log *slog.Logger) *Service {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{db: db, cache: cache, ttl: sessionTTL, log: log}
}

func (s *Service) Register(ctx context.Context, username, password string) (*models.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{Username: username, PasswordHash: hash}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}
	return user, nil
}

// Authenticate returns ErrInvalidCredentials for both unknown usernames and
// wrong passwords so callers cannot probe which usernames exist.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (s *Service) CreateSession(ctx context.Context, userID uint64) (*models.Session, error) {
	token, err := common.NewSessionToken()
	if err != nil {
		return nil, err
	}
	session := &models.Session{
		ID:        token,
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.ttl),
	}
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SaveSession(ctx, session); err != nil {
			s.log.Warn("session cache write failed", "error", err)
		}
	}
	return session, nil
}

func (s *Service) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	if s.cache != nil {
		cached, hit, err := s.cache.GetSession(ctx, sessionID)
		if err != nil {
			s.log.Warn("session cache read failed", "error", err)
		} else if hit {
			return cached, nil
		}
	}

	var session models.Session
	if err := s.db.WithContext(ctx).First(&session, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// DeleteSession reports whether a session row was removed. A second call for
// the same id returns false, never an error. The cache entry goes first: a
// row deleted from the table must never keep resolving from a stale cache
// entry, so a failed cache delete aborts the whole logout.
func (s *Service) DeleteSession(ctx context.Context, sessionID string) (bool, error) {
	if s.cache != nil {
		if err := s.cache.DeleteSession(ctx, sessionID); err != nil {
			return false, err
		}
	}
	res := s.db.WithContext(ctx).Delete(&models.Session{}, "id = ?", sessionID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ResolveToken maps a bearer token to its owning user. A session at or past
// its expiry is rejected; expiry is lazy, no background sweep exists.
func (s *Service) ResolveToken(ctx context.Context, token string) (*models.User, error) {
	session, err := s.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrUnauthenticated
	}
	if !time.Now().Before(session.ExpiresAt) {
		return nil, ErrTokenExpired
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, session.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return &user, nil
}
