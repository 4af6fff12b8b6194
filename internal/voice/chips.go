package voice

import "time"

const (
	chipsVisible  = 10
	chipsRetained = 30
)

// Chip is one entry of the session activity feed ("added 2x Colgate", "GST
// 18%", ...). The feed is bounded: the most recent 30 entries are retained
// and the most recent 10 are shown.
type Chip struct {
	Label string    `json:"label"`
	Kind  string    `json:"kind"`
	At    time.Time `json:"at"`
}

type chipLog struct {
	entries []Chip
	now     func() time.Time
}

func newChipLog(now func() time.Time) *chipLog {
	if now == nil {
		now = time.Now
	}
	return &chipLog{now: now}
}

func (c *chipLog) Add(kind, label string) {
	c.entries = append(c.entries, Chip{Label: label, Kind: kind, At: c.now()})
	if len(c.entries) > chipsRetained {
		c.entries = c.entries[len(c.entries)-chipsRetained:]
	}
}

// Visible returns the most recent chips, newest first.
func (c *chipLog) Visible() []Chip {
	n := len(c.entries)
	count := n
	if count > chipsVisible {
		count = chipsVisible
	}
	out := make([]Chip, 0, count)
	for i := n - 1; i >= n-count; i-- {
		out = append(out, c.entries[i])
	}
	return out
}

// All returns every retained chip, newest first.
func (c *chipLog) All() []Chip {
	out := make([]Chip, 0, len(c.entries))
	for i := len(c.entries) - 1; i >= 0; i-- {
		out = append(out, c.entries[i])
	}
	return out
}
