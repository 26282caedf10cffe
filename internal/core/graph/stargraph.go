package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sort"
	"strings"
)

var (
	ErrCorruptGraph    = errors.New("corrupt star graph")
	ErrNoRelationTypes = errors.New("graph has no relation types")
	ErrInvalidYears    = errors.New("start year must be before end year")
)

// StarGraph groups timed edges from an implicit central node to named
// entities by relation type. Edges of one type never overlap in time;
// edges of different types are unconstrained.
type StarGraph struct {
	relations map[string]*Relations
}

func NewStarGraph() *StarGraph {
	return &StarGraph{relations: make(map[string]*Relations)}
}

// AddEdge adds rel under relType, creating the bucket on first use.
func (g *StarGraph) AddEdge(relType string, rel Relation) bool {
	if g.relations == nil {
		g.relations = make(map[string]*Relations)
	}
	bucket, ok := g.relations[relType]
	if !ok {
		bucket = NewRelations(relType)
		g.relations[relType] = bucket
	}
	return bucket.Add(rel)
}

// GenerateStarGraph shuffles entities and gives each one a single attempt
// at an edge of a uniformly chosen relation type, with intervals drawn from
// [startYear, endYear). Entities whose sampling keeps colliding get no edge.
func GenerateStarGraph(entities, relationTypes []string, startYear, endYear int, rng *rand.Rand) (*StarGraph, error) {
	if startYear >= endYear {
		return nil, fmt.Errorf("%w: %d >= %d", ErrInvalidYears, startYear, endYear)
	}
	if len(relationTypes) == 0 {
		return nil, ErrNoRelationTypes
	}
	if rng == nil {
		rng = NewRand(nil)
	}

	years := make([]int, 0, endYear-startYear)
	for y := startYear; y < endYear; y++ {
		years = append(years, y)
	}

	shuffled := slices.Clone(entities)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	g := NewStarGraph()
	for _, entity := range shuffled {
		relType := relationTypes[rng.IntN(len(relationTypes))]
		bucket, ok := g.relations[relType]
		if !ok {
			bucket = NewRelations(relType)
			g.relations[relType] = bucket
		}
		if _, _, err := bucket.NewRandomValidRelationWith(entity, years, WithRand(rng)); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Types returns the relation types in sorted order.
func (g *StarGraph) Types() []string {
	types := make([]string, 0, len(g.relations))
	for t := range g.relations {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func (g *StarGraph) Relations(relType string) (*Relations, bool) {
	r, ok := g.relations[relType]
	return r, ok
}

func (g *StarGraph) NRelationTypes() int { return len(g.relations) }

func (g *StarGraph) NRelations() int {
	n := 0
	for _, r := range g.relations {
		n += r.Len()
	}
	return n
}

// Len is the total edge count.
func (g *StarGraph) Len() int { return g.NRelations() }

func (g *StarGraph) MeanNodesPerRelationType() (float64, error) {
	if len(g.relations) == 0 {
		return 0, ErrNoRelationTypes
	}
	return float64(g.NRelations()) / float64(len(g.relations)), nil
}

// AllLatest maps every non-empty relation type to its latest relation.
func (g *StarGraph) AllLatest() map[string]Relation {
	latest := make(map[string]Relation, len(g.relations))
	for t, r := range g.relations {
		if rel, ok := r.Latest(); ok {
			latest[t] = rel
		}
	}
	return latest
}

func (g *StarGraph) Has(relType string, rel Relation) bool {
	r, ok := g.relations[relType]
	return ok && r.Has(rel)
}

// Equal reports whether both graphs hold the same edges under the same
// types, regardless of insertion order.
func (g *StarGraph) Equal(other *StarGraph) bool {
	if g.Len() != other.Len() {
		return false
	}
	for t, r := range g.relations {
		for _, rel := range r.members {
			if !other.Has(t, rel) {
				return false
			}
		}
	}
	return true
}

// String is the as-is rendering, one edge per line.
func (g *StarGraph) String() string {
	return strings.Join(g.Lines(), "\n")
}

// GraphRecord is the serialized form: relation type to its collection.
type GraphRecord map[string]RelationsRecord

func (g *StarGraph) Record() GraphRecord {
	rec := make(GraphRecord, len(g.relations))
	for t, r := range g.relations {
		rec[t] = r.Record()
	}
	return rec
}

// FromRecord replays every stored relation through AddEdge. Unlike a silent
// replay it rejects the whole graph when a relation would be dropped or a
// collection label disagrees with its key.
func FromRecord(rec GraphRecord) (*StarGraph, error) {
	g := NewStarGraph()
	for _, relType := range sortedKeys(rec) {
		rr := rec[relType]
		if rr.RelName != relType {
			return nil, fmt.Errorf("%w: key %q holds relations labelled %q", ErrCorruptGraph, relType, rr.RelName)
		}
		g.relations[relType] = NewRelations(relType)
		for i, relRec := range rr.Relations {
			rel, err := RelationFromRecord(relRec)
			if err != nil {
				return nil, fmt.Errorf("%w: %s[%d]: %v", ErrCorruptGraph, relType, i, err)
			}
			if !g.AddEdge(relType, rel) {
				return nil, fmt.Errorf("%w: %s[%d] %s overlaps another %s relation",
					ErrCorruptGraph, relType, i, rel, relType)
			}
		}
	}
	return g, nil
}

func sortedKeys(rec GraphRecord) []string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (g *StarGraph) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Record())
}

func (g *StarGraph) UnmarshalJSON(data []byte) error {
	var rec GraphRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	parsed, err := FromRecord(rec)
	if err != nil {
		return err
	}
	g.relations = parsed.relations
	return nil
}
