package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/albapepper/swiss-tournament/internal/api/respond"
	"github.com/albapepper/swiss-tournament/internal/cache"
)

const cacheKeyTournaments = "tournaments"

// ListTournaments returns every tournament.
// @Summary List tournaments
// @Tags tournaments
// @Produce json
// @Success 200 {array} store.Tournament
// @Router /tournaments [get]
func (h *Handler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, cacheKeyTournaments, cache.TTLTournaments, "list tournaments", func() (interface{}, error) {
		return h.svc.Tournaments(r.Context())
	})
}

// RegisterTournament adds a tournament.
// @Summary Register tournament
// @Tags tournaments
// @Accept json
// @Produce json
// @Param body body nameRequest true "Tournament name"
// @Success 201 {object} store.Tournament
// @Failure 400 {object} respond.ErrorResponse
// @Router /tournaments [post]
func (h *Handler) RegisterTournament(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := respond.ReadJSON(w, r, &req); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_BODY", "Body must be {\"name\": string}", err.Error())
		return
	}
	t, err := h.svc.RegisterTournament(r.Context(), req.Name)
	if err != nil {
		h.writeStoreError(w, "register tournament", err)
		return
	}
	h.InvalidateReads()
	respond.WriteJSONObject(w, http.StatusCreated, t)
}

// ClearTournaments deletes every tournament.
// @Summary Clear tournaments
// @Tags tournaments
// @Produce json
// @Success 200 {object} map[string]int64
// @Router /tournaments [delete]
func (h *Handler) ClearTournaments(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.ClearTournaments(r.Context())
	if err != nil {
		h.writeStoreError(w, "clear tournaments", err)
		return
	}
	h.InvalidateReads()
	respond.WriteJSONObject(w, http.StatusOK, map[string]int64{"deleted": n})
}

// serveCached answers from the cache when possible, otherwise loads, encodes
// and caches the value. A write that invalidates while load runs keeps the
// loaded value out of the cache; this response still carries it.
func (h *Handler) serveCached(w http.ResponseWriter, r *http.Request, key string, ttl time.Duration, op string, load func() (interface{}, error)) {
	if data, etag, ok := h.cache.Get(key); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	gen := h.cache.Generation()
	v, err := load()
	if err != nil {
		h.writeStoreError(w, op, err)
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("Failed to encode response", "op", op, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "ENCODE_ERROR", "Failed to encode response")
		return
	}

	etag, _ := h.cache.SetIfGeneration(key, data, ttl, gen)
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, data, etag, ttl, false)
}
