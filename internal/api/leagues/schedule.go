package leagues

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/leaguedesk/internal/api/apiutil"
	leaguesvc "github.com/codr1/leaguedesk/internal/leagues"
)

type scheduleRequest struct {
	StartDate        *string  `json:"start_date"`
	EndDate          *string  `json:"end_date"`
	Weekdays         []string `json:"weekdays"`
	KickoffTimes     []string `json:"kickoff_times"`
	VenueIDs         []int64  `json:"venue_ids"`
	DoubleRoundRobin bool     `json:"double_round_robin"`
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// parseWeekday accepts full names and three-letter abbreviations.
func parseWeekday(raw string) (time.Weekday, bool) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if day, ok := weekdayNames[name]; ok {
		return day, true
	}
	if len(name) == 3 {
		for full, day := range weekdayNames {
			if strings.HasPrefix(full, name) {
				return day, true
			}
		}
	}
	return 0, false
}

func (req scheduleRequest) options() (leaguesvc.ScheduleOptions, error) {
	opts := leaguesvc.ScheduleOptions{
		KickoffTimes:     req.KickoffTimes,
		VenueIDs:         req.VenueIDs,
		DoubleRoundRobin: req.DoubleRoundRobin,
	}
	if len(req.VenueIDs) == 0 {
		return opts, apiutil.FieldError{Field: "venue_ids", Reason: "must list at least one venue"}
	}
	start, err := apiutil.ParseOptionalTimestamp(req.StartDate, "start_date")
	if err != nil {
		return opts, err
	}
	if start != nil {
		opts.StartDate = *start
	}
	end, err := apiutil.ParseOptionalTimestamp(req.EndDate, "end_date")
	if err != nil {
		return opts, err
	}
	if end != nil {
		opts.EndDate = *end
	}
	for _, raw := range req.Weekdays {
		day, ok := parseWeekday(raw)
		if !ok {
			return opts, apiutil.FieldError{Field: "weekdays", Reason: "must contain day names such as Saturday"}
		}
		opts.Weekdays = append(opts.Weekdays, day)
	}
	return opts, nil
}

// POST /api/v1/leagues/{id}/schedule
func HandleGenerateSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.PathID(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	var req scheduleRequest
	if err := apiutil.DecodeBody(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	opts, err := req.options()
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	fixtures, err := service.GenerateSchedule(r.Context(), id, opts)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	log.Ctx(r.Context()).Info().Int64("league_id", id).Int("fixtures", len(fixtures)).Msg("Generated league schedule")
	count := len(fixtures)
	if err := apiutil.WriteJSON(w, http.StatusCreated, apiutil.Envelope{
		Success: true,
		Data:    fixtures,
		Count:   &count,
		Message: "Schedule generated",
	}); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write JSON response")
	}
}
