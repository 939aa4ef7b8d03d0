package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/swiss-tournament/internal/db"
	"github.com/albapepper/swiss-tournament/internal/swiss"
)

func TestMatchReportResults(t *testing.T) {
	cases := []struct {
		name   string
		report MatchReport
		want   []MatchResult
	}{
		{
			name:   "decisive",
			report: MatchReport{TournamentID: 1, Winner: 5, Loser: swiss.Against(swiss.Entrant{ID: 6})},
			want: []MatchResult{
				{TournamentID: 1, PlayerID: 5, Outcome: OutcomeWin},
				{TournamentID: 1, PlayerID: 6, Outcome: OutcomeLose},
			},
		},
		{
			name:   "bye records a sole win",
			report: MatchReport{TournamentID: 1, Winner: 5, Loser: swiss.Bye},
			want:   []MatchResult{{TournamentID: 1, PlayerID: 5, Outcome: OutcomeWin}},
		},
		{
			name:   "draw records both players",
			report: MatchReport{TournamentID: 2, Winner: 5, Loser: swiss.Against(swiss.Entrant{ID: 6}), Draw: true},
			want: []MatchResult{
				{TournamentID: 2, PlayerID: 5, Outcome: OutcomeDraw},
				{TournamentID: 2, PlayerID: 6, Outcome: OutcomeDraw},
			},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := c.report.Results()
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestMatchReportRejectsDrawAgainstBye(t *testing.T) {
	_, err := MatchReport{TournamentID: 1, Winner: 5, Loser: swiss.Bye, Draw: true}.Results()
	assert.ErrorIs(t, err, ErrDrawAgainstBye)
}

func TestMatchReportRequiresLoser(t *testing.T) {
	_, err := MatchReport{TournamentID: 1, Winner: 5}.Results()
	assert.Error(t, err)
}

func TestReportMatchBye(t *testing.T) {
	mock, s := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(db.StmtRecordOutcome).WithArgs(int64(3), int64(5), "win").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, s.ReportMatch(context.Background(), MatchReport{TournamentID: 3, Winner: 5, Loser: swiss.Bye}))
}

func TestReportMatchDraw(t *testing.T) {
	mock, s := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(db.StmtRecordOutcome).WithArgs(int64(3), int64(5), "draw").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(db.StmtRecordOutcome).WithArgs(int64(3), int64(6), "draw").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := s.ReportMatch(context.Background(), MatchReport{
		TournamentID: 3, Winner: 5, Loser: swiss.Against(swiss.Entrant{ID: 6}), Draw: true,
	})
	require.NoError(t, err)
}

func TestReportMatchDecisive(t *testing.T) {
	mock, s := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(db.StmtRecordOutcome).WithArgs(int64(1), int64(2), "win").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(db.StmtRecordOutcome).WithArgs(int64(1), int64(9), "lose").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := s.ReportMatch(context.Background(), MatchReport{
		TournamentID: 1, Winner: 2, Loser: swiss.Against(swiss.Entrant{ID: 9}),
	})
	require.NoError(t, err)
}

func TestReportMatchUnknownPlayerRollsBack(t *testing.T) {
	mock, s := newMock(t)
	fk := &pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: "matches_player_id_fkey"}
	mock.ExpectBegin()
	mock.ExpectExec(db.StmtRecordOutcome).WithArgs(int64(1), int64(2), "win").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(db.StmtRecordOutcome).WithArgs(int64(1), int64(99), "lose").
		WillReturnError(fk)
	mock.ExpectRollback()

	err := s.ReportMatch(context.Background(), MatchReport{
		TournamentID: 1, Winner: 2, Loser: swiss.Against(swiss.Entrant{ID: 99}),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownPlayer)

	var pgErr *pgconn.PgError
	assert.True(t, errors.As(err, &pgErr), "original store error must stay reachable")
}

func TestReportMatchDrawAgainstByeTouchesNothing(t *testing.T) {
	_, s := newMock(t)
	err := s.ReportMatch(context.Background(), MatchReport{TournamentID: 1, Winner: 2, Loser: swiss.Bye, Draw: true})
	assert.ErrorIs(t, err, ErrDrawAgainstBye)
}

func TestReportMatchBeginFailure(t *testing.T) {
	mock, s := newMock(t)
	mock.ExpectBegin().WillReturnError(errors.New("pool closed"))

	err := s.ReportMatch(context.Background(), MatchReport{TournamentID: 1, Winner: 2, Loser: swiss.Bye})
	assert.ErrorContains(t, err, "pool closed")
}
