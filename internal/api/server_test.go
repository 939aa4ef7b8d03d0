package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/swiss-tournament/internal/api/handler"
	"github.com/albapepper/swiss-tournament/internal/cache"
	"github.com/albapepper/swiss-tournament/internal/config"
	"github.com/albapepper/swiss-tournament/internal/store"
	"github.com/albapepper/swiss-tournament/internal/swiss"
)

type stubService struct{ players []store.Player }

func (s *stubService) ClearMatches(context.Context) (int64, error)     { return 0, nil }
func (s *stubService) ClearPlayers(context.Context) (int64, error)     { return int64(len(s.players)), nil }
func (s *stubService) ClearTournaments(context.Context) (int64, error) { return 0, nil }
func (s *stubService) CountPlayers(context.Context) (int, error)       { return len(s.players), nil }
func (s *stubService) RegisterPlayer(_ context.Context, name string) (store.Player, error) {
	p := store.Player{ID: int64(len(s.players) + 1), Name: name}
	s.players = append(s.players, p)
	return p, nil
}
func (s *stubService) RegisterTournament(_ context.Context, name string) (store.Tournament, error) {
	return store.Tournament{ID: 1, Name: name}, nil
}
func (s *stubService) Tournaments(context.Context) ([]store.Tournament, error) {
	return []store.Tournament{}, nil
}
func (s *stubService) Standings(context.Context) ([]swiss.Standing, error) {
	out := make([]swiss.Standing, len(s.players))
	for i, p := range s.players {
		out[i] = swiss.Standing{ID: p.ID, Name: p.Name}
	}
	return out, nil
}
func (s *stubService) ReportMatch(context.Context, store.MatchReport) error { return nil }
func (s *stubService) Pairings(ctx context.Context) ([]swiss.Matchup, error) {
	st, _ := s.Standings(ctx)
	return swiss.Pair(swiss.FromStandings(st)), nil
}

type okPinger struct{}

func (okPinger) HealthCheck(context.Context) error { return nil }

func newTestRouter(t *testing.T, adminToken string) http.Handler {
	t.Helper()
	cfg := &config.Config{
		CORSAllowOrigins: []string{"http://localhost:3000"},
		AdminToken:       adminToken,
	}
	h := handler.New(&stubService{}, okPinger{}, cache.New(false), nil)
	return NewRouter(h, cfg)
}

func TestRouterServesReads(t *testing.T) {
	router := newTestRouter(t, "")

	for _, path := range []string{"/", "/health", "/health/db", "/health/cache", "/api/v1/players/count", "/api/v1/tournaments", "/api/v1/standings", "/api/v1/pairings"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRouterGuardsWrites(t *testing.T) {
	router := newTestRouter(t, "s3cret")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/players", strings.NewReader(`{"name":"Ann"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/players", strings.NewReader(`{"name":"Ann"}`))
	req.Header.Set("Authorization", "Bearer s3cret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	// reads stay open
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/pairings", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"player":{"id":1,"name":"Ann"},"opponent":{"bye":true}}]`, rec.Body.String())
}

func TestRouterRejectsUnknownMethod(t *testing.T) {
	router := newTestRouter(t, "")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/matches", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
