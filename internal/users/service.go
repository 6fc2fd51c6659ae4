// Package users manages accounts: creation, password hashing, profile updates
// and credential checks.
package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"github.com/nyaruka/phonenumbers"
	"github.com/rs/zerolog/log"

	"github.com/codr1/leaguedesk/internal/api/auth"
	"github.com/codr1/leaguedesk/internal/api/authz"
	"github.com/codr1/leaguedesk/internal/models"
	"github.com/codr1/leaguedesk/internal/store"
)

// dummyHash is compared against when the email is unknown so that both login
// failure paths cost one bcrypt comparison.
var dummyHash = sync.OnceValue(func() string {
	hash, _ := auth.HashPassword("leaguedesk-unknown-user")
	return hash
})

type CreateInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Phone     *string
	Role      models.Role
}

// UpdateInput is a partial update. Nil fields are left unchanged; an empty
// phone clears it.
type UpdateInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Password  *string
	Phone     *string
	Role      *models.Role
}

type Service struct {
	repos  store.Transactor
	region string
}

var _ auth.AccountService = (*Service)(nil)

// NewService builds the user service. region is the ISO 3166 region used to
// interpret phone numbers written without a country code.
func NewService(repos store.Transactor, region string) (*Service, error) {
	if repos == nil {
		return nil, errors.New("user service requires repositories")
	}
	if region == "" {
		region = "US"
	}
	return &Service{repos: repos, region: strings.ToUpper(region)}, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (models.User, error) {
	firstName := strings.TrimSpace(in.FirstName)
	lastName := strings.TrimSpace(in.LastName)
	if firstName == "" || lastName == "" {
		return models.User{}, models.InvalidInputf("firstName and lastName are required")
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return models.User{}, err
	}
	if err := validatePassword(in.Password); err != nil {
		return models.User{}, err
	}
	phone, err := s.normalizePhone(in.Phone)
	if err != nil {
		return models.User{}, err
	}
	role := in.Role
	if role == "" {
		role = models.RoleCoach
	}
	if _, ok := models.ParseRole(string(role)); !ok {
		return models.User{}, models.InvalidInputf("role must be ADMIN or COACH")
	}

	if _, err := s.repos.Users().GetByEmail(ctx, email); err == nil {
		return models.User{}, models.Conflictf("User with this email already exists")
	} else if !errors.Is(err, models.ErrNotFound) {
		return models.User{}, fmt.Errorf("check email: %w", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repos.Users().Create(ctx, models.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: hash,
		Phone:        phone,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return models.User{}, models.Conflictf("User with this email already exists")
		}
		return models.User{}, err
	}

	log.Ctx(ctx).Info().Int64("user_id", user.ID).Str("role", string(user.Role)).Msg("User created")
	return user, nil
}

// Register creates an account from a self-service registration.
func (s *Service) Register(ctx context.Context, reg auth.Registration) (models.User, error) {
	return s.Create(ctx, CreateInput{
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
		Email:     reg.Email,
		Password:  reg.Password,
		Phone:     reg.Phone,
		Role:      reg.Role,
	})
}

// Authenticate checks email and password. Unknown emails and wrong passwords
// fail the same way.
func (s *Service) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	invalid := authz.Deny(authz.ErrUnauthenticated, "Invalid email or password")

	user, err := s.repos.Users().GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			auth.VerifyPassword(dummyHash(), password)
			return models.User{}, invalid
		}
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return models.User{}, invalid
	}
	return user, nil
}

func (s *Service) Get(ctx context.Context, id int64) (models.User, error) {
	return s.repos.Users().Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]models.User, error) {
	return s.repos.Users().List(ctx)
}

// Update applies in to the user. Only an admin actor may change a role.
func (s *Service) Update(ctx context.Context, actor *authz.AuthUser, id int64, in UpdateInput) (models.User, error) {
	user, err := s.repos.Users().Get(ctx, id)
	if err != nil {
		return models.User{}, err
	}

	if in.FirstName != nil {
		if strings.TrimSpace(*in.FirstName) == "" {
			return models.User{}, models.InvalidInputf("firstName cannot be empty")
		}
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		if strings.TrimSpace(*in.LastName) == "" {
			return models.User{}, models.InvalidInputf("lastName cannot be empty")
		}
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Email != nil {
		email, err := normalizeEmail(*in.Email)
		if err != nil {
			return models.User{}, err
		}
		if email != user.Email {
			if _, err := s.repos.Users().GetByEmail(ctx, email); err == nil {
				return models.User{}, models.Conflictf("User with this email already exists")
			} else if !errors.Is(err, models.ErrNotFound) {
				return models.User{}, fmt.Errorf("check email: %w", err)
			}
		}
		user.Email = email
	}
	if in.Password != nil {
		if err := validatePassword(*in.Password); err != nil {
			return models.User{}, err
		}
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return models.User{}, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}
	if in.Phone != nil {
		phone, err := s.normalizePhone(in.Phone)
		if err != nil {
			return models.User{}, err
		}
		user.Phone = phone
	}
	if in.Role != nil && *in.Role != user.Role {
		if !authz.IsAdmin(actor) {
			return models.User{}, authz.Deny(authz.ErrForbidden, "Only an admin can change a role")
		}
		if _, ok := models.ParseRole(string(*in.Role)); !ok {
			return models.User{}, models.InvalidInputf("role must be ADMIN or COACH")
		}
		user.Role = *in.Role
	}

	updated, err := s.repos.Users().Update(ctx, user)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return models.User{}, models.Conflictf("User with this email already exists")
		}
		return models.User{}, err
	}
	return updated, nil
}

// Delete removes the user and returns the deleted record. Teams coached and
// fixtures refereed by the user keep existing without them.
func (s *Service) Delete(ctx context.Context, id int64) (models.User, error) {
	var deleted models.User
	err := s.repos.RunInTx(ctx, func(repos store.Repositories) error {
		user, err := repos.Users().Get(ctx, id)
		if err != nil {
			return err
		}
		if err := repos.Users().Delete(ctx, id); err != nil {
			return err
		}
		deleted = user
		return nil
	})
	if err != nil {
		return models.User{}, err
	}
	log.Ctx(ctx).Info().Int64("user_id", id).Msg("User deleted")
	return deleted, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", models.InvalidInputf("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", models.InvalidInputf("email must be a valid address")
	}
	return email, nil
}

// validatePassword only requires a password to be present. Any length and
// any characters are accepted.
func validatePassword(password string) error {
	if password == "" {
		return models.InvalidInputf("password is required")
	}
	return nil
}

// normalizePhone formats raw as E.164. Nil or blank input yields nil.
func (s *Service) normalizePhone(raw *string) (*string, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	num, err := phonenumbers.Parse(strings.TrimSpace(*raw), s.region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return nil, models.InvalidInputf("phone must be a valid phone number")
	}
	formatted := phonenumbers.Format(num, phonenumbers.E164)
	return &formatted, nil
}
