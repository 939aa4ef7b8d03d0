package swiss

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entrants(n int) []Entrant {
	out := make([]Entrant, n)
	for i := range out {
		out[i] = Entrant{ID: int64(i + 1), Name: string(rune('A' + i))}
	}
	return out
}

func TestPair(t *testing.T) {
	cases := []struct {
		name  string
		input []Entrant
		want  [][4]string
	}{
		{
			name:  "empty",
			input: nil,
			want:  [][4]string{},
		},
		{
			name:  "single player gets bye",
			input: entrants(1),
			want:  [][4]string{{"1", "A", "bye", "bye"}},
		},
		{
			name:  "four players",
			input: entrants(4),
			want:  [][4]string{{"1", "A", "2", "B"}, {"3", "C", "4", "D"}},
		},
		{
			name:  "three players",
			input: entrants(3),
			want:  [][4]string{{"1", "A", "2", "B"}, {"3", "C", "bye", "bye"}},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Pair(c.input)
			require.NotNil(t, got)
			tuples := make([][4]string, len(got))
			for i, m := range got {
				tuples[i] = m.Tuple()
			}
			assert.Equal(t, c.want, tuples)
		})
	}
}

func TestPairAdjacencyAndCoverage(t *testing.T) {
	for n := 0; n <= 11; n++ {
		in := entrants(n)
		got := Pair(in)

		wantLen := n / 2
		if n%2 == 1 {
			wantLen++
		}
		require.Len(t, got, wantLen, "n=%d", n)

		seen := make(map[int64]int)
		byes := 0
		for i, m := range got {
			assert.Equal(t, in[2*i], m.Player, "n=%d matchup %d player", n, i)
			seen[m.Player.ID]++
			if m.Opponent.IsBye() {
				byes++
				assert.Equal(t, len(got)-1, i, "bye must be the last matchup")
				continue
			}
			opp, ok := m.Opponent.Entrant()
			require.True(t, ok)
			assert.Equal(t, in[2*i+1], opp, "n=%d matchup %d opponent", n, i)
			seen[opp.ID]++
		}
		assert.Equal(t, n%2, byes, "n=%d", n)
		assert.Len(t, seen, n)
		for id, count := range seen {
			assert.Equal(t, 1, count, "player %d paired %d times", id, count)
		}
	}
}

func TestPairKeepsTieOrder(t *testing.T) {
	standings := []Standing{
		{ID: 9, Name: "Zed", Wins: 1, Matches: 1},
		{ID: 2, Name: "Amy", Wins: 1, Matches: 1},
		{ID: 5, Name: "Bo", Wins: 1, Matches: 1},
		{ID: 1, Name: "Cy", Wins: 1, Matches: 1},
	}
	got := Pair(FromStandings(standings))
	require.Len(t, got, 2)
	assert.Equal(t, [4]string{"9", "Zed", "2", "Amy"}, got[0].Tuple())
	assert.Equal(t, [4]string{"5", "Bo", "1", "Cy"}, got[1].Tuple())
}

func TestFromStandingsDropsCounts(t *testing.T) {
	got := FromStandings([]Standing{{ID: 1, Name: "A", Wins: 3, Matches: 3}, {ID: 2, Name: "B", Wins: 2, Matches: 3}})
	assert.Equal(t, []Entrant{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}, got)
}

func TestOpponentJSON(t *testing.T) {
	data, err := json.Marshal(Matchup{Player: Entrant{ID: 3, Name: "C"}, Opponent: Bye})
	require.NoError(t, err)
	assert.JSONEq(t, `{"player":{"id":3,"name":"C"},"opponent":{"bye":true}}`, string(data))

	data, err = json.Marshal(Against(Entrant{ID: 4, Name: "D"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":4,"name":"D"}`, string(data))

	var o Opponent
	require.NoError(t, json.Unmarshal([]byte(`{"bye":true}`), &o))
	assert.True(t, o.IsBye())

	require.NoError(t, json.Unmarshal([]byte(`{"id":7}`), &o))
	e, ok := o.Entrant()
	require.True(t, ok)
	assert.Equal(t, int64(7), e.ID)

	assert.Error(t, json.Unmarshal([]byte(`{}`), &o))
}

func TestOpponentString(t *testing.T) {
	assert.Equal(t, "bye", Bye.String())
	assert.Equal(t, "Ann (12)", Against(Entrant{ID: 12, Name: "Ann"}).String())
}
