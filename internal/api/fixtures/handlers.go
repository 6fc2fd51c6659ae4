// internal/api/fixtures/handlers.go
package fixtures

import (
	"net/http"
	"strings"

	"github.com/codr1/leaguedesk/internal/api/apiutil"
	fixturesvc "github.com/codr1/leaguedesk/internal/fixtures"
)

var service *fixturesvc.Service

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(svc *fixturesvc.Service) {
	service = svc
}

type fixtureRequest struct {
	LeagueID   *int64             `json:"league_id"`
	HomeTeamID *int64             `json:"home_team_id"`
	AwayTeamID *int64             `json:"away_team_id"`
	VenueID    *int64             `json:"venue_id"`
	RefereeID  apiutil.OptionalID `json:"referee_id"`
	MatchDate  *string            `json:"match_date"`
	Status     *string            `json:"status"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func valueOr(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

// GET /api/v1/fixtures
func HandleList(w http.ResponseWriter, r *http.Request) {
	fixtures, err := service.List(r.Context())
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteList(w, r, fixtures)
}

// GET /api/v1/fixtures/{id}
func HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.PathID(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	fixture, err := service.Get(r.Context(), id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteSuccess(w, r, http.StatusOK, fixture)
}

// GET /api/v1/leagues/{id}/fixtures
func HandleListByLeague(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.PathID(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	fixtures, err := service.ListByLeague(r.Context(), id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteList(w, r, fixtures)
}

// GET /api/v1/teams/{id}/fixtures
func HandleListByTeam(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.PathID(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	fixtures, err := service.ListByTeam(r.Context(), id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteList(w, r, fixtures)
}

// GET /api/v1/fixtures/date-range?startDate=...&endDate=...
func HandleListByDateRange(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	rawStart := firstNonEmpty(query.Get("startDate"), query.Get("start_date"))
	rawEnd := firstNonEmpty(query.Get("endDate"), query.Get("end_date"))
	if rawStart == "" || rawEnd == "" {
		apiutil.WriteError(w, r, apiutil.HandlerError{
			Status:  http.StatusBadRequest,
			Message: "Start date and end date are required",
		})
		return
	}
	start, err := apiutil.ParseTimestamp(rawStart, "startDate")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	end, err := apiutil.ParseRangeEnd(rawEnd, "endDate")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	fixtures, err := service.ListByDateRange(r.Context(), start, end)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteList(w, r, fixtures)
}

// POST /api/v1/fixtures
func HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req fixtureRequest
	if err := apiutil.DecodeBody(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	in := fixturesvc.CreateInput{
		LeagueID:   valueOr(req.LeagueID),
		HomeTeamID: valueOr(req.HomeTeamID),
		AwayTeamID: valueOr(req.AwayTeamID),
		VenueID:    valueOr(req.VenueID),
		RefereeID:  req.RefereeID.Value,
	}
	if req.MatchDate != nil && strings.TrimSpace(*req.MatchDate) != "" {
		matchDate, err := apiutil.ParseTimestamp(*req.MatchDate, "match_date")
		if err != nil {
			apiutil.WriteError(w, r, err)
			return
		}
		in.MatchDate = matchDate
	}
	if req.Status != nil {
		in.Status = *req.Status
	}

	fixture, err := service.Create(r.Context(), in)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteSuccess(w, r, http.StatusCreated, fixture)
}

// PUT /api/v1/fixtures/{id}
func HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.PathID(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	var req fixtureRequest
	if err := apiutil.DecodeBody(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	in := fixturesvc.UpdateInput{
		LeagueID:     req.LeagueID,
		HomeTeamID:   req.HomeTeamID,
		AwayTeamID:   req.AwayTeamID,
		VenueID:      req.VenueID,
		RefereeID:    req.RefereeID.Value,
		ClearReferee: req.RefereeID.Set && req.RefereeID.Value == nil,
		Status:       req.Status,
	}
	if req.MatchDate != nil {
		matchDate, err := apiutil.ParseTimestamp(*req.MatchDate, "match_date")
		if err != nil {
			apiutil.WriteError(w, r, err)
			return
		}
		in.MatchDate = &matchDate
	}

	fixture, err := service.Update(r.Context(), id, in)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteSuccess(w, r, http.StatusOK, fixture)
}

// PATCH /api/v1/fixtures/{id}/status
func HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.PathID(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	var req statusRequest
	if err := apiutil.DecodeBody(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Status) == "" {
		apiutil.WriteError(w, r, apiutil.HandlerError{
			Status:  http.StatusBadRequest,
			Message: "Valid status is required (Scheduled, Completed, Postponed)",
		})
		return
	}

	fixture, err := service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteSuccess(w, r, http.StatusOK, fixture)
}

// DELETE /api/v1/fixtures/{id}
func HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.PathID(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	fixture, err := service.Get(r.Context(), id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if err := service.Delete(r.Context(), id); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteSuccessMessage(w, r, http.StatusOK, fixture, "Fixture deleted successfully")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
