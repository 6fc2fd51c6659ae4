package authz

import (
	"context"
	"errors"
	"time"

	"github.com/codr1/leaguedesk/internal/models"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

// AuthUser is the identity attached to an authenticated request. It never
// carries the password hash.
type AuthUser struct {
	ID        int64       `json:"id"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Email     string      `json:"email"`
	Phone     *string     `json:"phone"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
}

// NewAuthUser strips a stored user down to its request identity.
func NewAuthUser(u models.User) *AuthUser {
	return &AuthUser{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// Action names what a route requires of its caller.
type Action int

const (
	// ActionPublic needs no identity.
	ActionPublic Action = iota
	// ActionAuthenticated needs any valid identity.
	ActionAuthenticated
	// ActionAdmin needs the ADMIN role.
	ActionAdmin
	// ActionSelfOrAdmin needs the ADMIN role or the identity that owns the
	// target record.
	ActionSelfOrAdmin
)

func (a Action) String() string {
	switch a {
	case ActionPublic:
		return "public"
	case ActionAuthenticated:
		return "authenticated"
	case ActionAdmin:
		return "admin"
	case ActionSelfOrAdmin:
		return "self_or_admin"
	default:
		return "unknown"
	}
}

// Evaluate is the single access policy. ownerID is only consulted for
// ActionSelfOrAdmin.
func Evaluate(user *AuthUser, action Action, ownerID int64) error {
	if action == ActionPublic {
		return nil
	}
	if user == nil {
		return ErrUnauthenticated
	}

	switch action {
	case ActionAuthenticated:
		return nil
	case ActionAdmin:
		if IsAdmin(user) {
			return nil
		}
		return ErrForbidden
	case ActionSelfOrAdmin:
		if IsAdmin(user) || user.ID == ownerID {
			return nil
		}
		return ErrForbidden
	default:
		return ErrForbidden
	}
}

type userContextKey struct{}

func ContextWithUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext retrieves the AuthUser stored in ctx.
// It returns nil if ctx is nil, if no user is stored, or if the stored value has a different type.
func UserFromContext(ctx context.Context) *AuthUser {
	if ctx == nil {
		return nil
	}

	user, ok := ctx.Value(userContextKey{}).(*AuthUser)
	if !ok {
		return nil
	}

	return user
}

// IsAdmin reports whether user is non-nil and holds the ADMIN role.
func IsAdmin(user *AuthUser) bool {
	return user != nil && user.Role == models.RoleAdmin
}

// Deny builds an access failure of the given kind with a client-facing
// message.
func Deny(kind error, message string) error {
	return &models.Error{Kind: kind, Message: message}
}
