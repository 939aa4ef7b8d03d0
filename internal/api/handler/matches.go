package handler

import (
	"net/http"

	"github.com/albapepper/swiss-tournament/internal/api/respond"
	"github.com/albapepper/swiss-tournament/internal/cache"
	"github.com/albapepper/swiss-tournament/internal/store"
	"github.com/albapepper/swiss-tournament/internal/swiss"
)

const (
	cacheKeyStandings = "standings"
	cacheKeyPairings  = "pairings"
)

type reportRequest struct {
	TournamentID int64  `json:"tournament_id"`
	WinnerID     int64  `json:"winner_id"`
	LoserID      *int64 `json:"loser_id,omitempty"`
	Bye          bool   `json:"bye,omitempty"`
	Draw         bool   `json:"draw,omitempty"`
}

// toReport validates the request shape: exactly one of loser_id and bye.
func (req reportRequest) toReport() (store.MatchReport, string) {
	if req.TournamentID <= 0 || req.WinnerID <= 0 {
		return store.MatchReport{}, "tournament_id and winner_id must be positive"
	}
	if req.Bye == (req.LoserID != nil) {
		return store.MatchReport{}, "exactly one of loser_id or bye must be given"
	}
	report := store.MatchReport{
		TournamentID: req.TournamentID,
		Winner:       req.WinnerID,
		Loser:        swiss.Bye,
		Draw:         req.Draw,
	}
	if req.LoserID != nil {
		if *req.LoserID <= 0 {
			return store.MatchReport{}, "loser_id must be positive"
		}
		if *req.LoserID == req.WinnerID {
			return store.MatchReport{}, "a player cannot play against themselves"
		}
		report.Loser = swiss.Against(swiss.Entrant{ID: *req.LoserID})
	}
	return report, ""
}

// ReportMatch records a match result.
// @Summary Report match
// @Description Records win/lose rows, two draw rows when draw is set, or a single win when bye is set.
// @Tags matches
// @Accept json
// @Produce json
// @Param body body reportRequest true "Match result"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /matches [post]
func (h *Handler) ReportMatch(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := respond.ReadJSON(w, r, &req); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_BODY", "Malformed match report", err.Error())
		return
	}
	report, problem := req.toReport()
	if problem != "" {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_REPORT", problem)
		return
	}

	if err := h.svc.ReportMatch(r.Context(), report); err != nil {
		h.writeStoreError(w, "report match", err)
		return
	}
	h.InvalidateReads()

	results, _ := report.Results()
	respond.WriteJSONObject(w, http.StatusCreated, map[string]interface{}{
		"recorded": results,
	})
}

// ClearMatches deletes every match row.
// @Summary Clear matches
// @Tags matches
// @Produce json
// @Success 200 {object} map[string]int64
// @Router /matches [delete]
func (h *Handler) ClearMatches(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.ClearMatches(r.Context())
	if err != nil {
		h.writeStoreError(w, "clear matches", err)
		return
	}
	h.InvalidateReads()
	respond.WriteJSONObject(w, http.StatusOK, map[string]int64{"deleted": n})
}

// GetStandings returns players ordered by wins.
// @Summary Standings
// @Tags standings
// @Produce json
// @Success 200 {array} swiss.Standing
// @Router /standings [get]
func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, cacheKeyStandings, cache.TTLStandings, "load standings", func() (interface{}, error) {
		return h.svc.Standings(r.Context())
	})
}

// GetPairings returns next-round matchups from the current standings.
// @Summary Swiss pairings
// @Description Adjacent players in the standings are paired; an odd player out is paired with the bye.
// @Tags standings
// @Produce json
// @Success 200 {array} swiss.Matchup
// @Router /pairings [get]
func (h *Handler) GetPairings(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, cacheKeyPairings, cache.TTLStandings, "build pairings", func() (interface{}, error) {
		return h.svc.Pairings(r.Context())
	})
}
