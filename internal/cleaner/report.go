package cleaner

import (
	"encoding/json"
	"io"

	"github.com/ironsheep/tile-clean/internal/tile"
)

// Status is the disposition of one tile in a batch run.
type Status string

const (
	StatusUnchanged        Status = "unchanged"
	StatusTrimmed          Status = "trimmed"
	StatusRecovered        Status = "recovered"
	StatusFailed           Status = "failed"
	StatusSourceUnreadable Status = "source_unreadable"
	StatusMalformed        Status = "malformed"
	StatusError            Status = "error"
	StatusSkipped          Status = "skipped"
)

func statusOf(o tile.Outcome) Status {
	switch o {
	case tile.Unchanged:
		return StatusUnchanged
	case tile.Trimmed:
		return StatusTrimmed
	case tile.Recovered:
		return StatusRecovered
	default:
		return StatusFailed
	}
}

// Entry records what happened to one tile.
type Entry struct {
	Tile   string       `json:"tile"`
	Status Status       `json:"status"`
	Output string       `json:"output,omitempty"`
	Result *tile.Result `json:"result,omitempty"`
	Error  string       `json:"error,omitempty"`
}

// Counts tallies entries by status.
type Counts struct {
	Unchanged        int `json:"unchanged"`
	Trimmed          int `json:"trimmed"`
	Recovered        int `json:"recovered"`
	Failed           int `json:"failed"`
	SourceUnreadable int `json:"source_unreadable"`
	Malformed        int `json:"malformed"`
	Errors           int `json:"errors"`
	Skipped          int `json:"skipped"`
}

func (c *Counts) add(s Status) {
	switch s {
	case StatusUnchanged:
		c.Unchanged++
	case StatusTrimmed:
		c.Trimmed++
	case StatusRecovered:
		c.Recovered++
	case StatusFailed:
		c.Failed++
	case StatusSourceUnreadable:
		c.SourceUnreadable++
	case StatusMalformed:
		c.Malformed++
	case StatusError:
		c.Errors++
	case StatusSkipped:
		c.Skipped++
	}
}

// Report summarizes a batch run. Entries follow the sorted tile order.
type Report struct {
	TileDir string  `json:"tile_dir"`
	Total   int     `json:"total"`
	Counts  Counts  `json:"counts"`
	Entries []Entry `json:"entries"`
}

func newReport(tileDir string, entries []Entry) *Report {
	r := &Report{TileDir: tileDir, Total: len(entries), Entries: entries}
	for _, e := range entries {
		r.Counts.add(e.Status)
	}
	return r
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
