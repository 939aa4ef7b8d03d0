package handler

import (
	"net/http"

	"github.com/albapepper/swiss-tournament/internal/api/respond"
)

type nameRequest struct {
	Name string `json:"name"`
}

// CountPlayers returns the number of registered players.
// @Summary Count players
// @Tags players
// @Produce json
// @Success 200 {object} map[string]int
// @Router /players/count [get]
func (h *Handler) CountPlayers(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.CountPlayers(r.Context())
	if err != nil {
		h.writeStoreError(w, "count players", err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]int{"count": n})
}

// RegisterPlayer adds a player. Markup is stripped from the name.
// @Summary Register player
// @Tags players
// @Accept json
// @Produce json
// @Param body body nameRequest true "Player name"
// @Success 201 {object} store.Player
// @Failure 400 {object} respond.ErrorResponse
// @Router /players [post]
func (h *Handler) RegisterPlayer(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := respond.ReadJSON(w, r, &req); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_BODY", "Body must be {\"name\": string}", err.Error())
		return
	}
	p, err := h.svc.RegisterPlayer(r.Context(), req.Name)
	if err != nil {
		h.writeStoreError(w, "register player", err)
		return
	}
	h.InvalidateReads()
	respond.WriteJSONObject(w, http.StatusCreated, p)
}

// ClearPlayers deletes every player.
// @Summary Clear players
// @Tags players
// @Produce json
// @Success 200 {object} map[string]int64
// @Failure 500 {object} respond.ErrorResponse
// @Router /players [delete]
func (h *Handler) ClearPlayers(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.ClearPlayers(r.Context())
	if err != nil {
		h.writeStoreError(w, "clear players", err)
		return
	}
	h.InvalidateReads()
	respond.WriteJSONObject(w, http.StatusOK, map[string]int64{"deleted": n})
}
