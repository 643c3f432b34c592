package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/branyang02/smart-oh-ws-server/internal/config"
	"github.com/branyang02/smart-oh-ws-server/internal/database"
	"github.com/branyang02/smart-oh-ws-server/internal/models"
	"github.com/branyang02/smart-oh-ws-server/internal/state"
)

// SessionCookieName is the auth provider's session cookie on the websocket
// handshake.
const SessionCookieName = "authjs.session-token"

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotEnrolled     = errors.New("not enrolled in class")
)

// Identity is what the rest of the server needs to know about a
// connection: who, and what they are in this class.
type Identity struct {
	User models.User
	Role state.Role
}

// Service resolves connection identity before a websocket reaches a room.
// Two paths: the auth provider's session cookie checked against its
// database, or a signed dev token for running without that database.
type Service struct {
	db  database.Database
	cfg *config.Config
}

// NewService builds the auth service. db may be nil when no DATABASE_URL is
// configured; only dev tokens authenticate then.
func NewService(db database.Database, cfg *config.Config) *Service {
	return &Service{
		db:  db,
		cfg: cfg,
	}
}

// Authenticate resolves the request's identity for the given class. A
// `token` query parameter selects the dev-token path; otherwise the session
// cookie is required.
func (s *Service) Authenticate(ctx context.Context, r *http.Request, classID string) (*Identity, error) {
	if token := r.URL.Query().Get("token"); token != "" {
		return s.fromDevToken(token, classID)
	}
	return s.fromSessionCookie(ctx, r, classID)
}

func (s *Service) fromSessionCookie(ctx context.Context, r *http.Request, classID string) (*Identity, error) {
	if s.db == nil {
		return nil, fmt.Errorf("no database configured for cookie auth: %w", ErrUnauthenticated)
	}

	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil, fmt.Errorf("missing session cookie: %w", ErrUnauthenticated)
	}

	user, err := s.db.GetUserBySessionToken(ctx, cookie.Value)
	if errors.Is(err, database.ErrSessionNotFound) {
		return nil, fmt.Errorf("invalid session: %w", ErrUnauthenticated)
	}
	if err != nil {
		return nil, err
	}

	rawRole, err := s.db.GetRoleByUserAndClass(ctx, user.ID, classID)
	if errors.Is(err, database.ErrNotEnrolled) {
		return nil, fmt.Errorf("%s in class %s: %w", user.ID, classID, ErrNotEnrolled)
	}
	if err != nil {
		return nil, err
	}

	role, ok := state.ParseRole(rawRole)
	if !ok {
		return nil, fmt.Errorf("unknown role %q for %s in class %s", rawRole, user.ID, classID)
	}

	return &Identity{User: *user, Role: role}, nil
}

func (s *Service) fromDevToken(tokenString, classID string) (*Identity, error) {
	if len(s.cfg.JWT.Secret) == 0 {
		return nil, fmt.Errorf("dev tokens are disabled: %w", ErrUnauthenticated)
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.cfg.JWT.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid dev token: %w", ErrUnauthenticated)
	}

	claims, ok := token.Claims.(*jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid dev token: %w", ErrUnauthenticated)
	}

	userID, _ := (*claims)["sub"].(string)
	if userID == "" {
		return nil, fmt.Errorf("dev token has no subject: %w", ErrUnauthenticated)
	}

	if tokenClass, _ := (*claims)["class_id"].(string); tokenClass != "" && tokenClass != classID {
		return nil, fmt.Errorf("dev token for class %s used in class %s: %w", tokenClass, classID, ErrNotEnrolled)
	}

	rawRole, _ := (*claims)["role"].(string)
	role, ok := state.ParseRole(rawRole)
	if !ok {
		return nil, fmt.Errorf("dev token has invalid role %q: %w", rawRole, ErrUnauthenticated)
	}

	name, _ := (*claims)["name"].(string)
	email, _ := (*claims)["email"].(string)

	return &Identity{
		User: models.User{ID: userID, Name: name, Email: email},
		Role: role,
	}, nil
}

// IssueDevToken signs a token for the dev auth path. classID scopes the
// token to one class; leave it empty for a token valid in any class.
func (s *Service) IssueDevToken(user models.User, role state.Role, classID string, expiresIn time.Duration) (string, error) {
	if len(s.cfg.JWT.Secret) == 0 {
		return "", fmt.Errorf("dev tokens are disabled")
	}

	claims := jwt.MapClaims{
		"sub":   user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  string(role),
		"exp":   time.Now().Add(expiresIn).Unix(),
		"iat":   time.Now().Unix(),
	}
	if classID != "" {
		claims["class_id"] = classID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.cfg.JWT.Secret)
}
