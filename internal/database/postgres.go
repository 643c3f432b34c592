package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/branyang02/smart-oh-ws-server/internal/models"
	"github.com/branyang02/smart-oh-ws-server/pkg/logger"
)

// PostgresDB reads the auth provider's database. Table and column names
// (quoted, camelCase) are the provider's, not ours.
type PostgresDB struct {
	pool *pgxpool.Pool
}

func NewPostgresDB(databaseURL string) (*PostgresDB, error) {
	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Connected to database successfully")
	return &PostgresDB{pool: pool}, nil
}

func (db *PostgresDB) Close() error {
	db.pool.Close()
	return nil
}

// GetUserBySessionToken validates a session token and loads its user.
// Expired sessions are indistinguishable from missing ones on purpose.
func (db *PostgresDB) GetUserBySessionToken(ctx context.Context, token string) (*models.User, error) {
	query := `SELECT "userId", "expires" FROM "session" WHERE "sessionToken" = $1 LIMIT 1`

	var userID string
	var expires time.Time
	err := db.pool.QueryRow(ctx, query, token).Scan(&userID, &expires)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session lookup failed: %w", err)
	}
	if expires.Before(time.Now().UTC()) {
		return nil, ErrSessionNotFound
	}

	query = `SELECT "id", "name", "email", "emailVerified", "image" FROM "user" WHERE "id" = $1 LIMIT 1`

	user := &models.User{}
	err = db.pool.QueryRow(ctx, query, userID).Scan(
		&user.ID, &user.Name, &user.Email, &user.EmailVerified, &user.Image,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}

	return user, nil
}

// GetRoleByUserAndClass returns the raw role string from the enrollment
// table ("student" or "TA").
func (db *PostgresDB) GetRoleByUserAndClass(ctx context.Context, userID, classID string) (string, error) {
	query := `SELECT "role" FROM "user_class" WHERE "user_id" = $1 AND "class_id" = $2 LIMIT 1`

	var role string
	err := db.pool.QueryRow(ctx, query, userID, classID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotEnrolled
	}
	if err != nil {
		return "", fmt.Errorf("enrollment lookup failed: %w", err)
	}

	return role, nil
}
