// Package db provides a pgxpool-based connection pool with prepared statement
// registration, health checking and schema migration.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/swiss-tournament/internal/config"
)

// Prepared statement names. Callers pass these in place of SQL text.
const (
	StmtHealthCheck        = "health_check"
	StmtClearMatches       = "clear_matches"
	StmtClearPlayers       = "clear_players"
	StmtClearTournaments   = "clear_tournaments"
	StmtCountPlayers       = "count_players"
	StmtRegisterPlayer     = "register_player"
	StmtRegisterTournament = "register_tournament"
	StmtListTournaments    = "list_tournaments"
	StmtStandings          = "player_standings"
	StmtRecordOutcome      = "record_outcome"
)

// Statements maps every prepared statement name to its SQL.
var Statements = map[string]string{
	StmtHealthCheck: "SELECT 1",

	StmtClearMatches:     "DELETE FROM matches",
	StmtClearPlayers:     "DELETE FROM players",
	StmtClearTournaments: "DELETE FROM tournaments",

	StmtCountPlayers:       "SELECT count(*) FROM players",
	StmtRegisterPlayer:     "INSERT INTO players (name) VALUES ($1) RETURNING id, name",
	StmtRegisterTournament: "INSERT INTO tournaments (name) VALUES ($1) RETURNING id, name",
	StmtListTournaments:    "SELECT id, name FROM tournaments ORDER BY id",

	// Ties on wins keep id order so pairings are stable between calls.
	StmtStandings: "SELECT id, name, wins, matches FROM player_standings ORDER BY wins DESC, id ASC",

	StmtRecordOutcome: "INSERT INTO matches (tournament_id, player_id, outcome) VALUES ($1, $2, $3)",
}

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, StmtHealthCheck).Scan(&n)
}

func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	for name, sql := range Statements {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
