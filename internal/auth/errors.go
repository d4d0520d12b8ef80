package auth

import "errors"

var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
)
