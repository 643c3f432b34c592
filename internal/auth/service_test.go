package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/branyang02/smart-oh-ws-server/internal/config"
	"github.com/branyang02/smart-oh-ws-server/internal/database"
	"github.com/branyang02/smart-oh-ws-server/internal/models"
	"github.com/branyang02/smart-oh-ws-server/internal/state"
)

type mockDB struct {
	sessions map[string]*models.User
	roles    map[string]string // userID + "/" + classID -> role
}

func (m *mockDB) GetUserBySessionToken(ctx context.Context, token string) (*models.User, error) {
	user, ok := m.sessions[token]
	if !ok {
		return nil, database.ErrSessionNotFound
	}
	return user, nil
}

func (m *mockDB) GetRoleByUserAndClass(ctx context.Context, userID, classID string) (string, error) {
	role, ok := m.roles[userID+"/"+classID]
	if !ok {
		return "", database.ErrNotEnrolled
	}
	return role, nil
}

func (m *mockDB) Close() error { return nil }

func newTestService(db database.Database, secret string) *Service {
	return NewService(db, &config.Config{JWT: config.JWTConfig{Secret: []byte(secret)}})
}

func cookieRequest(token string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/ws/cs101", nil)
	if token != "" {
		r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	}
	return r
}

func TestAuthenticateWithSessionCookie(t *testing.T) {
	db := &mockDB{
		sessions: map[string]*models.User{
			"tok-1": {ID: "u1", Name: "Sam", Email: "sam@example.edu"},
		},
		roles: map[string]string{
			"u1/cs101": "student",
			"u1/cs202": "TA",
		},
	}
	svc := newTestService(db, "")

	tests := []struct {
		name     string
		token    string
		classID  string
		wantRole state.Role
		wantErr  error
	}{
		{"student in cs101", "tok-1", "cs101", state.RoleStudent, nil},
		{"TA in cs202", "tok-1", "cs202", state.RoleTA, nil},
		{"unknown token", "tok-9", "cs101", "", ErrUnauthenticated},
		{"missing cookie", "", "cs101", "", ErrUnauthenticated},
		{"not enrolled", "tok-1", "cs303", "", ErrNotEnrolled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := svc.Authenticate(context.Background(), cookieRequest(tt.token), tt.classID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("authenticate: %v", err)
			}
			if identity.User.ID != "u1" {
				t.Errorf("user = %q, want u1", identity.User.ID)
			}
			if identity.Role != tt.wantRole {
				t.Errorf("role = %q, want %q", identity.Role, tt.wantRole)
			}
		})
	}
}

func TestAuthenticateRejectsUnknownRole(t *testing.T) {
	db := &mockDB{
		sessions: map[string]*models.User{"tok-1": {ID: "u1"}},
		roles:    map[string]string{"u1/cs101": "janitor"},
	}
	svc := newTestService(db, "")

	if _, err := svc.Authenticate(context.Background(), cookieRequest("tok-1"), "cs101"); err == nil {
		t.Fatal("accepted a role the room cannot represent")
	}
}

func TestAuthenticateWithoutDatabase(t *testing.T) {
	svc := newTestService(nil, "")
	_, err := svc.Authenticate(context.Background(), cookieRequest("tok-1"), "cs101")
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("err = %v, want ErrUnauthenticated", err)
	}
}

func TestDevTokenRoundTrip(t *testing.T) {
	svc := newTestService(nil, "test-secret")
	user := models.User{ID: "t1", Name: "Taylor", Email: "taylor@example.edu"}

	token, err := svc.IssueDevToken(user, state.RoleTA, "cs101", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	r := httptest.NewRequest(http.MethodGet, "/ws/cs101?token="+token, nil)
	identity, err := svc.Authenticate(context.Background(), r, "cs101")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if identity.User.ID != "t1" || identity.User.Name != "Taylor" {
		t.Errorf("user = %+v, want t1/Taylor", identity.User)
	}
	if identity.Role != state.RoleTA {
		t.Errorf("role = %q, want TA", identity.Role)
	}
}

func TestDevTokenClassScoping(t *testing.T) {
	svc := newTestService(nil, "test-secret")
	token, err := svc.IssueDevToken(models.User{ID: "s1"}, state.RoleStudent, "cs101", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	r := httptest.NewRequest(http.MethodGet, "/ws/cs202?token="+token, nil)
	if _, err := svc.Authenticate(context.Background(), r, "cs202"); !errors.Is(err, ErrNotEnrolled) {
		t.Fatalf("cross-class token = %v, want ErrNotEnrolled", err)
	}

	// An unscoped token works anywhere.
	token, err = svc.IssueDevToken(models.User{ID: "s1"}, state.RoleStudent, "", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	r = httptest.NewRequest(http.MethodGet, "/ws/cs202?token="+token, nil)
	if _, err := svc.Authenticate(context.Background(), r, "cs202"); err != nil {
		t.Fatalf("unscoped token: %v", err)
	}
}

func TestDevTokenRejections(t *testing.T) {
	svc := newTestService(nil, "test-secret")
	other := newTestService(nil, "other-secret")
	disabled := newTestService(nil, "")

	good, err := svc.IssueDevToken(models.User{ID: "s1"}, state.RoleStudent, "", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	expired, err := svc.IssueDevToken(models.User{ID: "s1"}, state.RoleStudent, "", -time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		svc   *Service
		token string
	}{
		{"wrong secret", other, good},
		{"expired", svc, expired},
		{"garbage", svc, "not-a-jwt"},
		{"dev tokens disabled", disabled, good},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/ws/cs101?token="+tt.token, nil)
			if _, err := tt.svc.Authenticate(context.Background(), r, "cs101"); !errors.Is(err, ErrUnauthenticated) {
				t.Fatalf("err = %v, want ErrUnauthenticated", err)
			}
		})
	}
}

func TestIssueDevTokenRequiresSecret(t *testing.T) {
	svc := newTestService(nil, "")
	if _, err := svc.IssueDevToken(models.User{ID: "s1"}, state.RoleStudent, "", time.Hour); err == nil {
		t.Fatal("issued a token without a secret")
	}
}
