// internal/api/venues/handlers.go
package venues

import (
	"net/http"
	"strings"

	"github.com/codr1/leaguedesk/internal/api/apiutil"
	venuesvc "github.com/codr1/leaguedesk/internal/venues"
)

var service *venuesvc.Service

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(svc *venuesvc.Service) {
	service = svc
}

type venueRequest struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
}

// GET /api/v1/venues
func HandleList(w http.ResponseWriter, r *http.Request) {
	venues, err := service.List(r.Context())
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteList(w, r, venues)
}

// GET /api/v1/venues/{id}
func HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.PathID(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	venue, err := service.GetDetail(r.Context(), id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteSuccess(w, r, http.StatusOK, venue)
}

// POST /api/v1/venues
func HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req venueRequest
	if err := apiutil.DecodeBody(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "name", Reason: "is required"})
		return
	}
	venue, err := service.Create(r.Context(), venuesvc.Input{Name: *req.Name, Location: req.Location})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteSuccess(w, r, http.StatusCreated, venue)
}

// PUT /api/v1/venues/{id}
func HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.PathID(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	var req venueRequest
	if err := apiutil.DecodeBody(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	venue, err := service.Update(r.Context(), id, venuesvc.Update{Name: req.Name, Location: req.Location})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteSuccess(w, r, http.StatusOK, venue)
}

// DELETE /api/v1/venues/{id}
func HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.PathID(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if err := service.Delete(r.Context(), id); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteMessage(w, r, http.StatusOK, "Venue deleted successfully")
}
