package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/swiss-tournament/internal/store"
	"github.com/albapepper/swiss-tournament/internal/swiss"
)

func TestValidFormat(t *testing.T) {
	assert.NoError(t, validFormat("table"))
	assert.NoError(t, validFormat("json"))
	assert.Error(t, validFormat("yaml"))
}

func TestPairingsTableShowsBye(t *testing.T) {
	var buf bytes.Buffer
	p := &printer{w: &buf, format: formatTable}
	ms := swiss.Pair([]swiss.Entrant{{ID: 1, Name: "Ann"}, {ID: 2, Name: "Bo"}, {ID: 3, Name: "Cy"}})

	require.NoError(t, p.pairings(ms))
	out := buf.String()
	for _, want := range []string{"Board", "Opponent", "Ann", "Bo", "Cy", "bye"} {
		assert.Contains(t, out, want)
	}
}

func TestPairingsJSON(t *testing.T) {
	var buf bytes.Buffer
	p := &printer{w: &buf, format: formatJSON}
	ms := swiss.Pair([]swiss.Entrant{{ID: 7, Name: "Solo"}})

	require.NoError(t, p.pairings(ms))
	assert.JSONEq(t, `[{"player":{"id":7,"name":"Solo"},"opponent":{"bye":true}}]`, buf.String())
}

func TestStandingsTableRanks(t *testing.T) {
	var buf bytes.Buffer
	p := &printer{w: &buf, format: formatTable}
	require.NoError(t, p.standings([]swiss.Standing{
		{ID: 4, Name: "Dee", Wins: 2, Matches: 2},
		{ID: 5, Name: "Eve", Wins: 0, Matches: 2},
	}))
	out := buf.String()
	assert.Contains(t, out, "Dee")
	assert.Contains(t, out, "Eve")
	assert.Contains(t, out, "Wins")
}

func TestCountAndResults(t *testing.T) {
	var buf bytes.Buffer
	p := &printer{w: &buf, format: formatTable}
	require.NoError(t, p.count("deleted", 3))
	assert.Equal(t, "deleted: 3\n", buf.String())

	buf.Reset()
	p.format = formatJSON
	require.NoError(t, p.results([]store.MatchResult{{TournamentID: 1, PlayerID: 2, Outcome: store.OutcomeWin}}))
	assert.JSONEq(t, `{"recorded":[{"tournament_id":1,"player_id":2,"outcome":"win"}]}`, buf.String())
}

func TestReportFlagsAreExclusive(t *testing.T) {
	root := rootCmd()
	root.SetArgs([]string{"matches", "report", "--tournament", "1", "--winner", "2", "--loser", "3", "--bye"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	assert.Error(t, root.Execute())
}

func TestReportDrawAgainstByeFailsBeforeConnecting(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	root := rootCmd()
	root.SetArgs([]string{"matches", "report", "--tournament", "1", "--winner", "2", "--bye", "--draw"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	err := root.Execute()
	assert.ErrorIs(t, err, store.ErrDrawAgainstBye)
}
