package database

import (
	"context"
	"errors"

	"github.com/branyang02/smart-oh-ws-server/internal/models"
)

var (
	// ErrSessionNotFound covers both unknown and expired session tokens.
	ErrSessionNotFound = errors.New("session not found")

	// ErrNotEnrolled means the user has no role in the requested class.
	ErrNotEnrolled = errors.New("user not enrolled in class")
)

// SessionRepository resolves the auth provider's session tokens. The
// provider owns these tables; this service only reads them.
type SessionRepository interface {
	GetUserBySessionToken(ctx context.Context, token string) (*models.User, error)
}

// EnrollmentRepository answers "what is this user in this class".
type EnrollmentRepository interface {
	GetRoleByUserAndClass(ctx context.Context, userID, classID string) (string, error)
}

type Database interface {
	SessionRepository
	EnrollmentRepository
	Close() error
}
