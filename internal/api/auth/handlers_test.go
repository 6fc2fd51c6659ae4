package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/codr1/leaguedesk/internal/api/authz"
	"github.com/codr1/leaguedesk/internal/config"
	"github.com/codr1/leaguedesk/internal/models"
	"github.com/codr1/leaguedesk/internal/ratelimit"
)

// fakeAccounts keeps accounts in memory. Passwords are stored in clear.
type fakeAccounts struct {
	mu        sync.Mutex
	nextID    int64
	users     map[int64]models.User
	passwords map[int64]string
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{users: map[int64]models.User{}, passwords: map[int64]string{}}
}

func (f *fakeAccounts) Register(_ context.Context, reg Registration) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == strings.ToLower(reg.Email) {
			return models.User{}, models.Conflictf("User with this email already exists")
		}
	}
	f.nextID++
	user := models.User{
		ID:           f.nextID,
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		Email:        strings.ToLower(reg.Email),
		PasswordHash: "hash:" + reg.Password,
		Role:         reg.Role,
	}
	f.users[user.ID] = user
	f.passwords[user.ID] = reg.Password
	return user, nil
}

func (f *fakeAccounts) Authenticate(_ context.Context, email, password string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, u := range f.users {
		if u.Email == strings.ToLower(strings.TrimSpace(email)) && f.passwords[id] == password {
			return u, nil
		}
	}
	return models.User{}, authz.Deny(authz.ErrUnauthenticated, "Invalid email or password")
}

func (f *fakeAccounts) Get(_ context.Context, id int64) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return models.User{}, models.NotFoundf("User not found")
	}
	return u, nil
}

func setupAuthTest(t *testing.T, restrictAdmin bool, maxAttempts int) *fakeAccounts {
	t.Helper()

	prevConfig, prevAccounts, prevTokens, prevLimiter := appConfig, accounts, tokens, limiter
	t.Cleanup(func() {
		appConfig, accounts, tokens, limiter = prevConfig, prevAccounts, prevTokens, prevLimiter
	})

	cfg := &config.Config{}
	cfg.App.Environment = config.EnvironmentDevelopment
	cfg.Auth.RestrictAdminRegistration = restrictAdmin

	fake := newFakeAccounts()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	l := ratelimit.New(&ratelimit.Config{
		LoginMaxAttempts:  maxAttempts,
		LoginLockout:      15 * time.Minute,
		LoginMaxIPPerHour: 100,
		Clock:             clock,
	})
	t.Cleanup(l.Close)

	InitHandlers(cfg, fake, NewTokenManager("test-secret", "leaguedesk-test", time.Hour, clock), l)
	return fake
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func doJSON(t *testing.T, handler http.HandlerFunc, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec, env
}

func TestHandleRegister(t *testing.T) {
	setupAuthTest(t, false, 5)

	rec, env := doJSON(t, HandleRegister, http.MethodPost, "/api/v1/auth/register",
		`{"firstName":"Sam","lastName":"Keeper","email":"sam@example.com","password":"goalie1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !env.Success || env.Message != "User registered successfully" {
		t.Fatalf("unexpected envelope %+v", env)
	}
	if strings.Contains(rec.Body.String(), "goalie1") || strings.Contains(rec.Body.String(), "hash:") {
		t.Fatalf("password leaked in response: %s", rec.Body.String())
	}

	var resp authResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a token")
	}
	if resp.User.Role != models.RoleCoach {
		t.Fatalf("default role = %q, want COACH", resp.User.Role)
	}
}

func TestHandleRegisterValidation(t *testing.T) {
	setupAuthTest(t, false, 5)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing email", `{"firstName":"A","lastName":"B","password":"secret1"}`, http.StatusBadRequest},
		{"bad role", `{"firstName":"A","lastName":"B","email":"a@example.com","password":"secret1","role":"REFEREE"}`, http.StatusBadRequest},
		{"unknown field", `{"firstName":"A","lastName":"B","email":"a@example.com","password":"secret1","nickname":"x"}`, http.StatusBadRequest},
		{"malformed", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := doJSON(t, HandleRegister, http.MethodPost, "/api/v1/auth/register", tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if env.Success || env.Error == "" {
				t.Fatalf("expected failure envelope, got %+v", env)
			}
		})
	}
}

func TestHandleRegisterRestrictsAdmin(t *testing.T) {
	setupAuthTest(t, true, 5)

	rec, env := doJSON(t, HandleRegister, http.MethodPost, "/api/v1/auth/register",
		`{"firstName":"A","lastName":"B","email":"boss@example.com","password":"secret1","role":"admin"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp authResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if resp.User.Role != models.RoleCoach {
		t.Fatalf("role = %q, want COACH", resp.User.Role)
	}
}

func TestHandleLogin(t *testing.T) {
	setupAuthTest(t, false, 5)

	doJSON(t, HandleRegister, http.MethodPost, "/api/v1/auth/register",
		`{"firstName":"A","lastName":"B","email":"coach@example.com","password":"secret1"}`)

	rec, env := doJSON(t, HandleLogin, http.MethodPost, "/api/v1/auth/login",
		`{"email":"Coach@Example.com","password":"secret1"}`)
	if rec.Code != http.StatusOK || env.Message != "Login successful" {
		t.Fatalf("status = %d, envelope = %+v", rec.Code, env)
	}

	rec, env = doJSON(t, HandleLogin, http.MethodPost, "/api/v1/auth/login",
		`{"email":"coach@example.com","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if env.Error != "Invalid email or password" {
		t.Fatalf("error = %q", env.Error)
	}

	rec, _ = doJSON(t, HandleLogin, http.MethodPost, "/api/v1/auth/login", `{"email":"coach@example.com"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing password status = %d, want 400", rec.Code)
	}
}

func TestHandleLoginLocksOut(t *testing.T) {
	setupAuthTest(t, false, 2)

	doJSON(t, HandleRegister, http.MethodPost, "/api/v1/auth/register",
		`{"firstName":"A","lastName":"B","email":"coach@example.com","password":"secret1"}`)

	for i := 0; i < 2; i++ {
		rec, _ := doJSON(t, HandleLogin, http.MethodPost, "/api/v1/auth/login",
			`{"email":"coach@example.com","password":"wrong"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d status = %d, want 401", i+1, rec.Code)
		}
	}

	rec, _ := doJSON(t, HandleLogin, http.MethodPost, "/api/v1/auth/login",
		`{"email":"coach@example.com","password":"secret1"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestUserFromRequest(t *testing.T) {
	fake := setupAuthTest(t, false, 5)

	user, err := fake.Register(context.Background(), Registration{FirstName: "A", LastName: "B", Email: "a@example.com", Password: "secret1", Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	token, err := tokens.Issue(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	got, err := UserFromRequest(req)
	if err != nil {
		t.Fatalf("UserFromRequest: %v", err)
	}
	if got.ID != user.ID || got.Role != models.RoleAdmin {
		t.Fatalf("got %+v", got)
	}

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"missing", "", "Access denied. No token provided."},
		{"wrong scheme", "Basic " + token, "Access denied. No token provided."},
		{"garbage", "Bearer nope", "Invalid token."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			_, err := UserFromRequest(req)
			if err == nil {
				t.Fatal("expected an error")
			}
			if msg := models.PublicMessage(err); msg != tt.want {
				t.Fatalf("message = %q, want %q", msg, tt.want)
			}
		})
	}

	fake.mu.Lock()
	delete(fake.users, user.ID)
	fake.mu.Unlock()
	if _, err := UserFromRequest(req); err == nil {
		t.Fatal("token for a deleted user should be rejected")
	}
}

func TestHandleMe(t *testing.T) {
	setupAuthTest(t, false, 5)

	rec, _ := doJSON(t, HandleMe, http.MethodGet, "/api/v1/auth/me", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req = req.WithContext(authz.ContextWithUser(req.Context(), &authz.AuthUser{ID: 7, Role: models.RoleCoach}))
	rec2 := httptest.NewRecorder()
	HandleMe(rec2, req)
	if rec2.Code != http.StatusOK {
		t.Fatalf("status = %d", rec2.Code)
	}
}
