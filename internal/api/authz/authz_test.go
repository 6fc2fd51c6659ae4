package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/codr1/leaguedesk/internal/models"
)

func TestEvaluate(t *testing.T) {
	admin := &AuthUser{ID: 1, Role: models.RoleAdmin}
	coach := &AuthUser{ID: 2, Role: models.RoleCoach}

	tests := []struct {
		name    string
		user    *AuthUser
		action  Action
		ownerID int64
		want    error
	}{
		{"public without identity", nil, ActionPublic, 0, nil},
		{"authenticated without identity", nil, ActionAuthenticated, 0, ErrUnauthenticated},
		{"authenticated coach", coach, ActionAuthenticated, 0, nil},
		{"admin route as coach", coach, ActionAdmin, 0, ErrForbidden},
		{"admin route as admin", admin, ActionAdmin, 0, nil},
		{"admin route without identity", nil, ActionAdmin, 0, ErrUnauthenticated},
		{"self as owner", coach, ActionSelfOrAdmin, 2, nil},
		{"self as other coach", coach, ActionSelfOrAdmin, 3, ErrForbidden},
		{"self as admin", admin, ActionSelfOrAdmin, 3, nil},
		{"self without identity", nil, ActionSelfOrAdmin, 2, ErrUnauthenticated},
		{"unknown action", admin, Action(99), 0, ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Evaluate(tt.user, tt.action, tt.ownerID)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("expected nil, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestUserFromContext(t *testing.T) {
	if UserFromContext(context.Background()) != nil {
		t.Fatal("expected nil user from empty context")
	}

	user := &AuthUser{ID: 10, Role: models.RoleCoach}
	ctx := ContextWithUser(context.Background(), user)
	if got := UserFromContext(ctx); got != user {
		t.Fatalf("expected stored user, got %+v", got)
	}
}

func TestNewAuthUserCopiesIdentity(t *testing.T) {
	phone := "+447700900123"
	u := models.User{
		ID:           4,
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "ada@example.com",
		PasswordHash: "hash",
		Phone:        &phone,
		Role:         models.RoleAdmin,
	}

	got := NewAuthUser(u)
	if got.ID != 4 || got.Email != "ada@example.com" || got.Role != models.RoleAdmin || got.Phone != &phone {
		t.Fatalf("unexpected auth user %+v", got)
	}
	if !IsAdmin(got) {
		t.Fatal("expected admin")
	}
}
