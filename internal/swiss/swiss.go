// Package swiss builds next-round pairings for a Swiss-system tournament.
//
// Players are paired by adjacency in the standings: first with second,
// third with fourth, and so on. An odd player out is paired against a bye.
package swiss

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ByeMarker is the identifier and name used for the bye in tuple output.
const ByeMarker = "bye"

// Entrant is a player as it appears in the standings.
type Entrant struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Standing is a player's aggregated record.
type Standing struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Wins    int    `json:"wins"`
	Matches int    `json:"matches"`
}

// Entrant returns the pairing-relevant part of the standing.
func (s Standing) Entrant() Entrant {
	return Entrant{ID: s.ID, Name: s.Name}
}

// Opponent is either a real entrant or the bye.
// The zero value is not valid; use Against or Bye.
type Opponent struct {
	entrant Entrant
	bye     bool
}

// Bye is the placeholder opponent for an unpaired player.
var Bye = Opponent{bye: true}

// Against returns an opponent backed by a real entrant.
func Against(e Entrant) Opponent {
	return Opponent{entrant: e}
}

// IsBye reports whether o is the bye.
func (o Opponent) IsBye() bool {
	return o.bye
}

// Entrant returns the underlying entrant and false for the bye.
func (o Opponent) Entrant() (Entrant, bool) {
	if o.bye {
		return Entrant{}, false
	}
	return o.entrant, true
}

func (o Opponent) String() string {
	if o.bye {
		return ByeMarker
	}
	return fmt.Sprintf("%s (%d)", o.entrant.Name, o.entrant.ID)
}

type opponentJSON struct {
	ID   *int64  `json:"id,omitempty"`
	Name *string `json:"name,omitempty"`
	Bye  bool    `json:"bye,omitempty"`
}

// MarshalJSON encodes a real opponent as {"id":..,"name":..} and the bye as {"bye":true}.
func (o Opponent) MarshalJSON() ([]byte, error) {
	if o.bye {
		return json.Marshal(opponentJSON{Bye: true})
	}
	return json.Marshal(opponentJSON{ID: &o.entrant.ID, Name: &o.entrant.Name})
}

// UnmarshalJSON accepts the shapes produced by MarshalJSON.
func (o *Opponent) UnmarshalJSON(data []byte) error {
	var v opponentJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.Bye {
		*o = Bye
		return nil
	}
	if v.ID == nil {
		return fmt.Errorf("opponent: id is required unless bye is set")
	}
	e := Entrant{ID: *v.ID}
	if v.Name != nil {
		e.Name = *v.Name
	}
	*o = Against(e)
	return nil
}

// Matchup is one pairing for the next round.
type Matchup struct {
	Player   Entrant  `json:"player"`
	Opponent Opponent `json:"opponent"`
}

// Tuple renders the matchup as (id1, name1, id2, name2), with the bye
// written as ByeMarker in both opponent slots.
func (m Matchup) Tuple() [4]string {
	t := [4]string{strconv.FormatInt(m.Player.ID, 10), m.Player.Name, ByeMarker, ByeMarker}
	if e, ok := m.Opponent.Entrant(); ok {
		t[2] = strconv.FormatInt(e.ID, 10)
		t[3] = e.Name
	}
	return t
}

// FromStandings keeps the order of standings and drops the counts.
func FromStandings(standings []Standing) []Entrant {
	entrants := make([]Entrant, len(standings))
	for i, s := range standings {
		entrants[i] = s.Entrant()
	}
	return entrants
}

// Pair chunks entrants into adjacent pairs in input order. The last entrant
// of an odd-length input is paired against Bye. Ties are never reordered.
func Pair(entrants []Entrant) []Matchup {
	matchups := make([]Matchup, 0, (len(entrants)+1)/2)
	for i := 0; i+1 < len(entrants); i += 2 {
		matchups = append(matchups, Matchup{
			Player:   entrants[i],
			Opponent: Against(entrants[i+1]),
		})
	}
	if len(entrants)%2 == 1 {
		matchups = append(matchups, Matchup{
			Player:   entrants[len(entrants)-1],
			Opponent: Bye,
		})
	}
	return matchups
}
