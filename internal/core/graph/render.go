package graph

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
)

var ErrUnsupportedStrategy = errors.New("unsupported serialization strategy")

// Strategy selects how a graph is rendered into context lines.
type Strategy int

const (
	AsIs Strategy = iota
	Shuffled
	InterleaveAscending
	InterleaveDescending
	LatestOnly
)

var strategyKeys = map[Strategy]string{
	AsIs:                 "as_is",
	Shuffled:             "shuffle",
	InterleaveAscending:  "interleave_asc",
	InterleaveDescending: "interleave_desc",
	LatestOnly:           "latest",
}

// Strategies lists every strategy in declaration order.
func Strategies() []Strategy {
	return []Strategy{AsIs, Shuffled, InterleaveAscending, InterleaveDescending, LatestOnly}
}

func ParseStrategy(key string) (Strategy, error) {
	for s, k := range strategyKeys {
		if k == key {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedStrategy, key)
}

func (s Strategy) String() string {
	if k, ok := strategyKeys[s]; ok {
		return k
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

func (s Strategy) Valid() bool {
	_, ok := strategyKeys[s]
	return ok
}

func (s Strategy) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedStrategy, int(s))
	}
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Render produces the context lines for s. rng is only consulted by
// Shuffled; nil means fresh entropy.
func (g *StarGraph) Render(s Strategy, rng *rand.Rand) ([]string, error) {
	switch s {
	case AsIs:
		return g.Lines(), nil
	case Shuffled:
		return g.ShuffledLines(rng), nil
	case InterleaveAscending:
		return g.InterleavedLines(true), nil
	case InterleaveDescending:
		return g.InterleavedLines(false), nil
	case LatestOnly:
		return g.LatestLines(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedStrategy, s)
	}
}

// RenderText joins Render's lines with newlines.
func (g *StarGraph) RenderText(s Strategy, rng *rand.Rand) (string, error) {
	lines, err := g.Render(s, rng)
	if err != nil {
		return "", err
	}
	return strings.Join(lines, "\n"), nil
}

// Lines visits relation types in sorted order and each type's members in
// insertion order.
func (g *StarGraph) Lines() []string {
	lines := make([]string, 0, g.Len())
	for _, t := range g.Types() {
		lines = append(lines, g.relations[t].Lines()...)
	}
	return lines
}

// ShuffledLines permutes Lines uniformly.
func (g *StarGraph) ShuffledLines(rng *rand.Rand) []string {
	if rng == nil {
		rng = NewRand(nil)
	}
	lines := g.Lines()
	rng.Shuffle(len(lines), func(i, j int) {
		lines[i], lines[j] = lines[j], lines[i]
	})
	return lines
}

// InterleavedLines sorts each type chronologically and merges the types
// round-robin: every type's first edge, then every type's second, and so on.
func (g *StarGraph) InterleavedLines(ascending bool) []string {
	types := g.Types()
	sorted := make([][]Relation, len(types))
	longest := 0
	for i, t := range types {
		sorted[i] = g.relations[t].Sorted(ascending)
		longest = max(longest, len(sorted[i]))
	}

	lines := make([]string, 0, g.Len())
	for pos := 0; pos < longest; pos++ {
		for i, t := range types {
			if pos < len(sorted[i]) {
				lines = append(lines, g.relations[t].line(sorted[i][pos]))
			}
		}
	}
	return lines
}

// LatestLines renders one line per relation type with its latest edge.
func (g *StarGraph) LatestLines() []string {
	lines := make([]string, 0, len(g.relations))
	for _, t := range g.Types() {
		r := g.relations[t]
		if rel, ok := r.Latest(); ok {
			lines = append(lines, r.line(rel))
		}
	}
	return lines
}
