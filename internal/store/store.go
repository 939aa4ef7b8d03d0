// Package store provides typed access to the tournament tables.
//
// Every method runs against a DB (normally *pgxpool.Pool) and acquires a
// connection only for the duration of the call. Statements are referenced by
// the names registered in package db.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/albapepper/swiss-tournament/internal/db"
	"github.com/albapepper/swiss-tournament/internal/sanitize"
	"github.com/albapepper/swiss-tournament/internal/swiss"
)

// pgForeignKeyViolation is the SQLSTATE for foreign_key_violation.
const pgForeignKeyViolation = "23503"

var (
	// ErrDrawAgainstBye is returned when a draw is reported against the bye.
	ErrDrawAgainstBye = errors.New("a match against the bye cannot be a draw")
	// ErrUnknownPlayer is returned when a match references a player that is not registered.
	ErrUnknownPlayer = errors.New("player is not registered")
)

// DB is the subset of pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Player is a registered player.
type Player struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Tournament is a registered tournament.
type Tournament struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Store implements the tournament operations.
type Store struct {
	db DB
}

// New returns a Store backed by d.
func New(d DB) *Store {
	return &Store{db: d}
}

// ClearMatches removes every match row and returns how many were removed.
func (s *Store) ClearMatches(ctx context.Context) (int64, error) {
	return s.clear(ctx, db.StmtClearMatches, "matches")
}

// ClearPlayers removes every player.
func (s *Store) ClearPlayers(ctx context.Context) (int64, error) {
	return s.clear(ctx, db.StmtClearPlayers, "players")
}

// ClearTournaments removes every tournament.
func (s *Store) ClearTournaments(ctx context.Context) (int64, error) {
	return s.clear(ctx, db.StmtClearTournaments, "tournaments")
}

func (s *Store) clear(ctx context.Context, stmt, table string) (int64, error) {
	tag, err := s.db.Exec(ctx, stmt)
	if err != nil {
		return 0, fmt.Errorf("clear %s: %w", table, err)
	}
	return tag.RowsAffected(), nil
}

// Reset clears matches, players and tournaments in one transaction.
// Matches go first because they reference players.
func (s *Store) Reset(ctx context.Context) error {
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		for _, stmt := range []string{db.StmtClearMatches, db.StmtClearPlayers, db.StmtClearTournaments} {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("%s: %w", stmt, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}

// CountPlayers returns the number of registered players.
func (s *Store) CountPlayers(ctx context.Context) (int, error) {
	var n int64
	if err := s.db.QueryRow(ctx, db.StmtCountPlayers).Scan(&n); err != nil {
		return 0, fmt.Errorf("count players: %w", err)
	}
	return int(n), nil
}

// RegisterPlayer stores a new player. The name is stripped of markup and the
// database assigns the id.
func (s *Store) RegisterPlayer(ctx context.Context, name string) (Player, error) {
	var p Player
	err := s.db.QueryRow(ctx, db.StmtRegisterPlayer, sanitize.Text(name)).Scan(&p.ID, &p.Name)
	if err != nil {
		return Player{}, fmt.Errorf("register player: %w", err)
	}
	return p, nil
}

// RegisterTournament stores a new tournament.
func (s *Store) RegisterTournament(ctx context.Context, name string) (Tournament, error) {
	var t Tournament
	err := s.db.QueryRow(ctx, db.StmtRegisterTournament, sanitize.Text(name)).Scan(&t.ID, &t.Name)
	if err != nil {
		return Tournament{}, fmt.Errorf("register tournament: %w", err)
	}
	return t, nil
}

// Tournaments lists tournaments in id order.
func (s *Store) Tournaments(ctx context.Context) ([]Tournament, error) {
	rows, err := s.db.Query(ctx, db.StmtListTournaments)
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]Tournament, 0)
	for rows.Next() {
		var t Tournament
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan tournament: %w", err)
		}
		tournaments = append(tournaments, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	return tournaments, nil
}

// Standings returns every player's record, most wins first. Players with
// equal wins are ordered by id.
func (s *Store) Standings(ctx context.Context) ([]swiss.Standing, error) {
	rows, err := s.db.Query(ctx, db.StmtStandings)
	if err != nil {
		return nil, fmt.Errorf("standings: %w", err)
	}
	defer rows.Close()

	standings := make([]swiss.Standing, 0)
	for rows.Next() {
		var st swiss.Standing
		if err := rows.Scan(&st.ID, &st.Name, &st.Wins, &st.Matches); err != nil {
			return nil, fmt.Errorf("scan standing: %w", err)
		}
		standings = append(standings, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("standings: %w", err)
	}
	return standings, nil
}

// Pairings returns the next-round matchups built from the current standings.
func (s *Store) Pairings(ctx context.Context) ([]swiss.Matchup, error) {
	standings, err := s.Standings(ctx)
	if err != nil {
		return nil, fmt.Errorf("pairings: %w", err)
	}
	return swiss.Pair(swiss.FromStandings(standings)), nil
}

// inTx runs fn in a transaction. The transaction is committed when fn
// returns nil and rolled back on error or panic.
func (s *Store) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
