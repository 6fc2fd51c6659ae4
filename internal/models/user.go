package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleCoach Role = "COACH"
)

// ParseRole accepts ADMIN or COACH in any letter case.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleCoach:
		return RoleCoach, true
	default:
		return "", false
	}
}

// User is a stored account. PasswordHash never leaves the server.
type User struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        *string   `json:"phone"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicUser is the subset of a user that may be embedded in other payloads,
// such as the referee of a fixture.
type PublicUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
}
