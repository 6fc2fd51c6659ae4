// internal/api/leagues/handlers.go
package leagues

import (
	"net/http"
	"strings"

	"github.com/codr1/leaguedesk/internal/api/apiutil"
	leaguesvc "github.com/codr1/leaguedesk/internal/leagues"
)

var service *leaguesvc.Service

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(svc *leaguesvc.Service) {
	service = svc
}

type leagueRequest struct {
	Name      *string `json:"name"`
	Season    *string `json:"season"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

// leagueUpdateRequest tells an absent date from an explicit null, which
// clears it.
type leagueUpdateRequest struct {
	Name      *string                `json:"name"`
	Season    *string                `json:"season"`
	StartDate apiutil.OptionalString `json:"start_date"`
	EndDate   apiutil.OptionalString `json:"end_date"`
}

// GET /api/v1/leagues
func HandleList(w http.ResponseWriter, r *http.Request) {
	leagues, err := service.List(r.Context())
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteList(w, r, leagues)
}

// GET /api/v1/leagues/{id}
func HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.PathID(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	league, err := service.GetDetail(r.Context(), id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteSuccess(w, r, http.StatusOK, league)
}

// POST /api/v1/leagues
func HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req leagueRequest
	if err := apiutil.DecodeBody(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "name", Reason: "is required"})
		return
	}
	startDate, err := apiutil.ParseOptionalTimestamp(req.StartDate, "start_date")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	endDate, err := apiutil.ParseOptionalTimestamp(req.EndDate, "end_date")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	league, err := service.Create(r.Context(), leaguesvc.LeagueInput{
		Name:      *req.Name,
		Season:    req.Season,
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteSuccess(w, r, http.StatusCreated, league)
}

// PUT /api/v1/leagues/{id}
func HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.PathID(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	var req leagueUpdateRequest
	if err := apiutil.DecodeBody(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	startDate, err := apiutil.ParseOptionalTimestamp(req.StartDate.Value, "start_date")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	endDate, err := apiutil.ParseOptionalTimestamp(req.EndDate.Value, "end_date")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	league, err := service.Update(r.Context(), id, leaguesvc.LeagueUpdate{
		Name:           req.Name,
		Season:         req.Season,
		StartDate:      startDate,
		EndDate:        endDate,
		ClearStartDate: req.StartDate.Cleared(),
		ClearEndDate:   req.EndDate.Cleared(),
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteSuccess(w, r, http.StatusOK, league)
}

// DELETE /api/v1/leagues/{id}
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
	apiutil.WriteMessage(w, r, http.StatusOK, "League deleted successfully")
}

// GET /api/v1/leagues/{id}/teams
func HandleListLeagueTeams(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.PathID(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	teams, err := service.ListTeamsByLeague(r.Context(), id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteList(w, r, teams)
}

// GET /api/v1/leagues/{id}/standings
func HandleStandings(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.PathID(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	standings, err := service.Standings(r.Context(), id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteList(w, r, standings)
}
