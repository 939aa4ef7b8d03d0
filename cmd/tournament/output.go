package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/albapepper/swiss-tournament/internal/archive"
	"github.com/albapepper/swiss-tournament/internal/store"
	"github.com/albapepper/swiss-tournament/internal/swiss"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

func validFormat(f string) error {
	switch f {
	case formatTable, formatJSON:
		return nil
	}
	return fmt.Errorf("unknown output format %q (want %s or %s)", f, formatTable, formatJSON)
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// printer renders command results as a bordered table or as JSON.
type printer struct {
	w      io.Writer
	format string
}

type entity struct {
	id   int64
	name string
}

func (p *printer) json(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *printer) table(headers []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	_, err := fmt.Fprintln(p.w, t.Render())
	return err
}

func (p *printer) entities(rows []entity, raw any) error {
	if p.format == formatJSON {
		return p.json(raw)
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string{strconv.FormatInt(r.id, 10), r.name}
	}
	return p.table([]string{"ID", "Name"}, out)
}

func (p *printer) count(label string, n int64) error {
	if p.format == formatJSON {
		return p.json(map[string]int64{label: n})
	}
	_, err := fmt.Fprintf(p.w, "%s: %d\n", label, n)
	return err
}

func (p *printer) results(rs []store.MatchResult) error {
	if p.format == formatJSON {
		return p.json(map[string]any{"recorded": rs})
	}
	out := make([][]string, len(rs))
	for i, r := range rs {
		out[i] = []string{
			strconv.FormatInt(r.TournamentID, 10),
			strconv.FormatInt(r.PlayerID, 10),
			string(r.Outcome),
		}
	}
	return p.table([]string{"Tournament", "Player", "Outcome"}, out)
}

func (p *printer) standings(st []swiss.Standing) error {
	if p.format == formatJSON {
		return p.json(st)
	}
	out := make([][]string, len(st))
	for i, s := range st {
		out[i] = []string{
			strconv.Itoa(i + 1),
			strconv.FormatInt(s.ID, 10),
			s.Name,
			strconv.Itoa(s.Wins),
			strconv.Itoa(s.Matches),
		}
	}
	return p.table([]string{"#", "ID", "Name", "Wins", "Matches"}, out)
}

func (p *printer) pairings(ms []swiss.Matchup) error {
	if p.format == formatJSON {
		return p.json(ms)
	}
	out := make([][]string, len(ms))
	for i, m := range ms {
		t := m.Tuple()
		out[i] = []string{strconv.Itoa(i + 1), t[0], t[1], t[2], t[3]}
	}
	return p.table([]string{"Board", "ID", "Player", "ID", "Opponent"}, out)
}

func (p *printer) export(r archive.Result) error {
	if p.format == formatJSON {
		return p.json(map[string]any{
			"bucket": r.Bucket,
			"prefix": r.Prefix,
			"keys":   r.Keys,
			"bytes":  r.Bytes,
		})
	}
	_, err := fmt.Fprintln(p.w, r.Summary())
	return err
}
