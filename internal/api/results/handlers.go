// internal/api/results/handlers.go
package results

import (
	"net/http"

	"github.com/codr1/leaguedesk/internal/api/apiutil"
	resultsvc "github.com/codr1/leaguedesk/internal/results"
)

var service *resultsvc.Service

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(svc *resultsvc.Service) {
	service = svc
}

type resultRequest struct {
	FixtureID *int64  `json:"fixture_id"`
	HomeScore *int    `json:"home_score"`
	AwayScore *int    `json:"away_score"`
	Report    *string `json:"report"`
}

// scores returns both scores or a 400 naming the first one missing.
func (req resultRequest) scores() (int, int, error) {
	if req.HomeScore == nil {
		return 0, 0, apiutil.FieldError{Field: "home_score", Reason: "is required"}
	}
	if req.AwayScore == nil {
		return 0, 0, apiutil.FieldError{Field: "away_score", Reason: "is required"}
	}
	return *req.HomeScore, *req.AwayScore, nil
}

// update converts a PUT body. A result cannot move to another fixture, so
// fixture_id is rejected rather than ignored.
func (req resultRequest) update() (resultsvc.UpdateInput, error) {
	if req.FixtureID != nil {
		return resultsvc.UpdateInput{}, apiutil.FieldError{Field: "fixture_id", Reason: "cannot be changed"}
	}
	return resultsvc.UpdateInput{HomeScore: req.HomeScore, AwayScore: req.AwayScore, Report: req.Report}, nil
}

// GET /api/v1/results
func HandleList(w http.ResponseWriter, r *http.Request) {
	results, err := service.List(r.Context())
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteList(w, r, results)
}

// GET /api/v1/results/{id}
func HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.PathID(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	result, err := service.Get(r.Context(), id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteSuccess(w, r, http.StatusOK, result)
}

// GET /api/v1/fixtures/{id}/result
func HandleGetByFixture(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.PathID(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	result, err := service.GetByFixture(r.Context(), id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteSuccess(w, r, http.StatusOK, result)
}

// GET /api/v1/leagues/{id}/results
func HandleListByLeague(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.PathID(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	results, err := service.ListByLeague(r.Context(), id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteList(w, r, results)
}

// GET /api/v1/teams/{id}/results
func HandleListByTeam(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.PathID(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	results, err := service.ListByTeam(r.Context(), id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteList(w, r, results)
}

// POST /api/v1/results
func HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req resultRequest
	if err := apiutil.DecodeBody(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if req.FixtureID == nil || *req.FixtureID <= 0 {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "fixture_id", Reason: "is required"})
		return
	}
	home, away, err := req.scores()
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	result, err := service.Create(r.Context(), resultsvc.CreateInput{
		FixtureID: *req.FixtureID,
		HomeScore: home,
		AwayScore: away,
		Report:    req.Report,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteSuccess(w, r, http.StatusCreated, result)
}

// POST /api/v1/fixtures/{id}/result completes the fixture and records its
// result together.
func HandleCreateForFixture(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.PathID(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	var req resultRequest
	if err := apiutil.DecodeBody(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if req.FixtureID != nil && *req.FixtureID != id {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "fixture_id", Reason: "must match the fixture in the path"})
		return
	}
	home, away, err := req.scores()
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	result, err := service.CreateAndCompleteFixture(r.Context(), resultsvc.CreateInput{
		FixtureID: id,
		HomeScore: home,
		AwayScore: away,
		Report:    req.Report,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteSuccess(w, r, http.StatusCreated, result)
}

// PUT /api/v1/results/{id}
func HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.PathID(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	var req resultRequest
	if err := apiutil.DecodeBody(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	in, err := req.update()
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	result, err := service.Update(r.Context(), id, in)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteSuccess(w, r, http.StatusOK, result)
}

// PUT /api/v1/fixtures/{id}/result
func HandleUpdateByFixture(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.PathID(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	var req resultRequest
	if err := apiutil.DecodeBody(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	in, err := req.update()
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	result, err := service.UpdateByFixture(r.Context(), id, in)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteSuccess(w, r, http.StatusOK, result)
}

// DELETE /api/v1/results/{id}
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
	apiutil.WriteSuccess(w, r, http.StatusOK, deleted)
}

// DELETE /api/v1/fixtures/{id}/result
func HandleDeleteByFixture(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.PathID(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	deleted, err := service.DeleteByFixture(r.Context(), id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteSuccess(w, r, http.StatusOK, deleted)
}
