package ledger

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Level selects how deep a report descends into the chart.
type Level struct {
	depth int // zero means All
}

// LevelAll shows every account and flags every header as a subtotal.
var LevelAll = Level{}

// LevelN shows accounts at depth <= n.
func LevelN(n int) Level {
	if n < 1 {
		return LevelAll
	}
	return Level{depth: n}
}

// ParseLevel accepts "All" (any case, or empty) or a positive integer.
func ParseLevel(raw string) (Level, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "all") {
		return LevelAll, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return Level{}, fmt.Errorf("invalid level %q", raw)
	}
	return Level{depth: n}, nil
}

func (l Level) IsAll() bool { return l.depth == 0 }

func (l Level) String() string {
	if l.IsAll() {
		return "All"
	}
	return strconv.Itoa(l.depth)
}

// Includes reports whether a node at depth is shown.
func (l Level) Includes(depth int) bool {
	return l.IsAll() || depth <= l.depth
}

// Descends reports whether traversal continues below a node at depth. Header
// rows are only flagged as subtotals where it does.
func (l Level) Descends(depth int) bool {
	return l.IsAll() || depth < l.depth
}

func (l Level) MarshalJSON() ([]byte, error) {
	if l.IsAll() {
		return json.Marshal("All")
	}
	return json.Marshal(l.depth)
}

func (l *Level) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*l = LevelN(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
