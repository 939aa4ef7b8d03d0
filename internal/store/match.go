package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/albapepper/swiss-tournament/internal/db"
	"github.com/albapepper/swiss-tournament/internal/swiss"
)

// Outcome is the result tag stored on a match row.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLose Outcome = "lose"
	OutcomeDraw Outcome = "draw"
)

// MatchResult is one row of the append-only match history.
type MatchResult struct {
	TournamentID int64   `json:"tournament_id"`
	PlayerID     int64   `json:"player_id"`
	Outcome      Outcome `json:"outcome"`
}

// MatchReport describes a finished match.
//
// With Draw set both players get a draw regardless of which one is Winner.
// A Loser of swiss.Bye records a single win for Winner.
type MatchReport struct {
	TournamentID int64
	Winner       int64
	Loser        swiss.Opponent
	Draw         bool
}

// Results expands the report into the rows it records.
func (r MatchReport) Results() ([]MatchResult, error) {
	if r.Loser.IsBye() {
		if r.Draw {
			return nil, ErrDrawAgainstBye
		}
		return []MatchResult{{TournamentID: r.TournamentID, PlayerID: r.Winner, Outcome: OutcomeWin}}, nil
	}

	loser, ok := r.Loser.Entrant()
	if !ok || loser.ID == 0 {
		return nil, fmt.Errorf("match report: loser is not set")
	}
	if r.Draw {
		return []MatchResult{
			{TournamentID: r.TournamentID, PlayerID: r.Winner, Outcome: OutcomeDraw},
			{TournamentID: r.TournamentID, PlayerID: loser.ID, Outcome: OutcomeDraw},
		}, nil
	}
	return []MatchResult{
		{TournamentID: r.TournamentID, PlayerID: r.Winner, Outcome: OutcomeWin},
		{TournamentID: r.TournamentID, PlayerID: loser.ID, Outcome: OutcomeLose},
	}, nil
}

// ReportMatch records the outcome rows for a match. All rows are written in
// one transaction.
func (s *Store) ReportMatch(ctx context.Context, r MatchReport) error {
	results, err := r.Results()
	if err != nil {
		return err
	}

	err = s.inTx(ctx, func(tx pgx.Tx) error {
		for _, res := range results {
			if _, err := tx.Exec(ctx, db.StmtRecordOutcome, res.TournamentID, res.PlayerID, string(res.Outcome)); err != nil {
				return matchError(res, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("report match: %w", err)
	}
	return nil
}

func matchError(res MatchResult, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return fmt.Errorf("%w: player %d: %w", ErrUnknownPlayer, res.PlayerID, err)
	}
	return fmt.Errorf("record %s for player %d: %w", res.Outcome, res.PlayerID, err)
}
