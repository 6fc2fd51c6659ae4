// internal/api/users/handlers.go
package users

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/codr1/leaguedesk/internal/api/apiutil"
	"github.com/codr1/leaguedesk/internal/api/authz"
	"github.com/codr1/leaguedesk/internal/models"
	usersvc "github.com/codr1/leaguedesk/internal/users"
)

var service *usersvc.Service

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(svc *usersvc.Service) {
	service = svc
}

type userRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	Phone     *string `json:"phone"`
	Role      *string `json:"role"`
}

func (req userRequest) role() (*models.Role, error) {
	if req.Role == nil {
		return nil, nil
	}
	role, ok := models.ParseRole(*req.Role)
	if !ok {
		return nil, apiutil.FieldError{Field: "role", Reason: "must be ADMIN or COACH"}
	}
	return &role, nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// GET /api/v1/users
func HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := service.List(r.Context())
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteList(w, r, users)
}

// POST /api/v1/users
func HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := apiutil.DecodeBody(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	role, err := req.role()
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	in := usersvc.CreateInput{
		FirstName: deref(req.FirstName),
		LastName:  deref(req.LastName),
		Email:     deref(req.Email),
		Password:  deref(req.Password),
		Phone:     req.Phone,
	}
	if role != nil {
		in.Role = *role
	}

	user, err := service.Create(r.Context(), in)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteSuccess(w, r, http.StatusCreated, user)
}

// GET /api/v1/users/{id}
func HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.PathID(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	user, err := service.Get(r.Context(), id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteSuccess(w, r, http.StatusOK, user)
}

// PUT /api/v1/users/{id}
func HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.PathID(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	var req userRequest
	if err := apiutil.DecodeBody(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	role, err := req.role()
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	user, err := service.Update(r.Context(), authz.UserFromContext(r.Context()), id, usersvc.UpdateInput{
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
	apiutil.WriteSuccess(w, r, http.StatusOK, user)
}

// DELETE /api/v1/users/{id}
func HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.PathID(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	deleted, err := service.Delete(r.Context(), id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if actor := authz.UserFromContext(r.Context()); actor != nil && actor.ID != id {
		log.Ctx(r.Context()).Info().Int64("actor_id", actor.ID).Int64("user_id", id).Msg("User deleted by admin")
	}
	apiutil.WriteSuccess(w, r, http.StatusOK, deleted)
}
