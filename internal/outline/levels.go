package outline

import (
	"fmt"
	"strconv"
	"strings"
)

// Level is a heading depth. Lower values are more significant.
type Level int

const (
	H1 Level = iota + 1
	H2
	H3
)

func (l Level) String() string {
	return "H" + strconv.Itoa(int(l))
}

// MarshalText encodes the level as "H1", "H2", ...
func (l Level) MarshalText() ([]byte, error) {
	if l < H1 {
		return nil, fmt.Errorf("invalid heading level %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText accepts "H1", "h2", ...
func (l *Level) UnmarshalText(b []byte) error {
	s := strings.ToUpper(strings.TrimSpace(string(b)))
	n, err := strconv.Atoi(strings.TrimPrefix(s, "H"))
	if err != nil || !strings.HasPrefix(s, "H") || n < 1 {
		return fmt.Errorf("invalid heading level %q", string(b))
	}
	*l = Level(n)
	return nil
}

// Levels binds each assigned level to one font size. Index 0 holds the H1
// size, index 1 the H2 size, and so on; sizes are strictly descending.
type Levels []int

// AssignLevels maps the largest candidate sizes to H1..Hn, n ≤ cfg.MaxLevels.
// Sizes past the last level are left out of the outline entirely.
func AssignLevels(c Candidates, cfg Config) Levels {
	cfg = cfg.withDefaults()
	sizes := c.Sizes()
	if len(sizes) > cfg.MaxLevels {
		sizes = sizes[:cfg.MaxLevels]
	}
	return Levels(sizes)
}

// Size returns the font size bound to level l.
func (lv Levels) Size(l Level) (int, bool) {
	i := int(l) - 1
	if i < 0 || i >= len(lv) {
		return 0, false
	}
	return lv[i], true
}
