package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/codr1/leaguedesk/internal/api/apiutil"
	"github.com/codr1/leaguedesk/internal/api/authz"
	"github.com/codr1/leaguedesk/internal/config"
	"github.com/codr1/leaguedesk/internal/models"
	"github.com/codr1/leaguedesk/internal/ratelimit"
)

// Registration is a self-service account request.
type Registration struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Phone     *string
	Role      models.Role
}

// AccountService is the user store as seen by authentication.
type AccountService interface {
	Register(ctx context.Context, reg Registration) (models.User, error)
	// Authenticate returns an error matching authz.ErrUnauthenticated when
	// the email is unknown or the password does not match.
	Authenticate(ctx context.Context, email, password string) (models.User, error)
	Get(ctx context.Context, id int64) (models.User, error)
}

var (
	accounts  AccountService
	tokens    *TokenManager
	limiter   *ratelimit.Limiter
	appConfig *config.Config
)

func InitHandlers(cfg *config.Config, svc AccountService, tm *TokenManager, l *ratelimit.Limiter) {
	appConfig = cfg
	accounts = svc
	tokens = tm
	limiter = l
}

type registerRequest struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	Phone     *string `json:"phone"`
	Role      *string `json:"role"`
}

type loginRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Role     *string `json:"role"`
}

type authResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// HandleRegister handles POST /api/v1/auth/register.
func HandleRegister(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	var req registerRequest
	if err := apiutil.DecodeBody(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	for _, f := range []struct{ name, value string }{
		{"firstName", req.FirstName},
		{"lastName", req.LastName},
		{"email", req.Email},
		{"password", req.Password},
	} {
		if strings.TrimSpace(f.value) == "" {
			apiutil.WriteError(w, r, apiutil.FieldError{Field: f.name, Reason: "is required"})
			return
		}
	}

	role := models.RoleCoach
	if req.Role != nil && strings.TrimSpace(*req.Role) != "" {
		parsed, ok := models.ParseRole(*req.Role)
		if !ok {
			apiutil.WriteError(w, r, apiutil.FieldError{Field: "role", Reason: "must be ADMIN or COACH"})
			return
		}
		role = parsed
	}
	if role == models.RoleAdmin && appConfig != nil && appConfig.Auth.RestrictAdminRegistration {
		logger.Info().Msg("Self-registration as ADMIN is restricted, registering as COACH")
		role = models.RoleCoach
	}

	user, err := accounts.Register(r.Context(), Registration{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
		Role:      role,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	token, err := tokens.Issue(user)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	logger.Info().Int64("user_id", user.ID).Str("role", string(user.Role)).Msg("User registered")
	apiutil.WriteSuccessMessage(w, r, http.StatusCreated, authResponse{User: user, Token: token}, "User registered successfully")
}

// HandleLogin handles POST /api/v1/auth/login.
func HandleLogin(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	var req loginRequest
	if err := apiutil.DecodeBody(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		apiutil.WriteError(w, r, apiutil.HandlerError{
			Status:  http.StatusBadRequest,
			Message: "Email and password are required",
		})
		return
	}
	// The role is accepted for compatibility with older clients but plays no
	// part in authentication.
	if req.Role != nil && strings.TrimSpace(*req.Role) != "" {
		if _, ok := models.ParseRole(*req.Role); !ok {
			apiutil.WriteError(w, r, apiutil.FieldError{Field: "role", Reason: "must be ADMIN or COACH"})
			return
		}
	}

	ip := ratelimit.GetClientIP(r, appConfig != nil && appConfig.RateLimit.TrustProxy)
	if limiter != nil {
		if result := limiter.CheckLogin(req.Email, ip); !result.Allowed {
			ratelimit.LogRateLimitExceeded(req.Email, ip, result.Reason)
			apiutil.WriteError(w, r, apiutil.HandlerError{
				Status:     http.StatusTooManyRequests,
				Message:    "Too many login attempts, try again later",
				Err:        apiutil.ErrRateLimited,
				RetryAfter: result.RetryAfter,
			})
			return
		}
	}

	user, err := accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, authz.ErrUnauthenticated) {
			if limiter != nil && limiter.RecordLoginFailure(req.Email, ip) {
				logger.Warn().
					Str("identifier", ratelimit.SanitizeIdentifier(req.Email)).
					Str("ip", ip).
					Msg("Login locked out after repeated failures")
			}
			apiutil.WriteError(w, r, apiutil.HandlerError{
				Status:  http.StatusUnauthorized,
				Message: "Invalid email or password",
				Err:     err,
			})
			return
		}
		apiutil.WriteError(w, r, err)
		return
	}
	if limiter != nil {
		limiter.RecordLoginSuccess(req.Email, ip)
	}

	token, err := tokens.Issue(user)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	logger.Info().Int64("user_id", user.ID).Msg("User logged in")
	apiutil.WriteSuccessMessage(w, r, http.StatusOK, authResponse{User: user, Token: token}, "Login successful")
}

// HandleMe handles GET /api/v1/auth/me.
func HandleMe(w http.ResponseWriter, r *http.Request) {
	user := authz.UserFromContext(r.Context())
	if user == nil {
		apiutil.WriteError(w, r, authz.ErrUnauthenticated)
		return
	}
	apiutil.WriteSuccess(w, r, http.StatusOK, user)
}

// UserFromRequest authenticates the bearer token on r and loads the user it
// names. Every failure matches authz.ErrUnauthenticated.
func UserFromRequest(r *http.Request) (*authz.AuthUser, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, raw, ok := strings.Cut(header, " ")
	raw = strings.TrimSpace(raw)
	if !ok || !strings.EqualFold(scheme, "Bearer") || raw == "" {
		return nil, authz.Deny(authz.ErrUnauthenticated, "Access denied. No token provided.")
	}
	if tokens == nil || accounts == nil {
		return nil, errors.New("auth handlers not initialized")
	}

	claims, err := tokens.Parse(raw)
	if err != nil {
		log.Ctx(r.Context()).Debug().Err(err).Msg("Rejected bearer token")
		return nil, authz.Deny(authz.ErrUnauthenticated, "Invalid token.")
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, authz.Deny(authz.ErrUnauthenticated, "Invalid token.")
	}

	user, err := accounts.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, authz.Deny(authz.ErrUnauthenticated, "Invalid token.")
		}
		return nil, err
	}
	return authz.NewAuthUser(user), nil
}
