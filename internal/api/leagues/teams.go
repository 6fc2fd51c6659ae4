package leagues

import (
	"net/http"
	"strings"

	"github.com/codr1/leaguedesk/internal/api/apiutil"
	leaguesvc "github.com/codr1/leaguedesk/internal/leagues"
)

// teamRequest is shared by create and update. On update a null coach_id
// removes the coach.
type teamRequest struct {
	LeagueID *int64             `json:"league_id"`
	Name     *string            `json:"name"`
	CoachID  apiutil.OptionalID `json:"coach_id"`
}

// GET /api/v1/teams
func HandleListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := service.ListTeams(r.Context())
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteList(w, r, teams)
}

// GET /api/v1/teams/{id}
func HandleGetTeam(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.PathID(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	team, err := service.GetTeam(r.Context(), id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteSuccess(w, r, http.StatusOK, team)
}

// POST /api/v1/teams
func HandleCreateTeam(w http.ResponseWriter, r *http.Request) {
	var req teamRequest
	if err := apiutil.DecodeBody(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "name", Reason: "is required"})
		return
	}
	if req.LeagueID == nil || *req.LeagueID <= 0 {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "league_id", Reason: "is required"})
		return
	}

	team, err := service.CreateTeam(r.Context(), leaguesvc.TeamInput{
		LeagueID: *req.LeagueID,
		Name:     *req.Name,
		CoachID:  req.CoachID.Value,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteSuccess(w, r, http.StatusCreated, team)
}

// PUT /api/v1/teams/{id}
func HandleUpdateTeam(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.PathID(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	var req teamRequest
	if err := apiutil.DecodeBody(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	team, err := service.UpdateTeam(r.Context(), id, leaguesvc.TeamUpdate{
		LeagueID:   req.LeagueID,
		Name:       req.Name,
		CoachID:    req.CoachID.Value,
		ClearCoach: req.CoachID.Set && req.CoachID.Value == nil,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteSuccess(w, r, http.StatusOK, team)
}

// DELETE /api/v1/teams/{id}
func HandleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.PathID(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if err := service.DeleteTeam(r.Context(), id); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteMessage(w, r, http.StatusOK, "Team deleted successfully")
}
