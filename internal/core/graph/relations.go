package graph

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
)

// DefaultTries bounds the rejection sampler in NewRandomValidRelationWith.
const DefaultTries = 5

// Relations is the set of relations sharing one relation type. No two
// members overlap in time; Add enforces it on every insertion.
type Relations struct {
	name    string
	members []Relation
}

func NewRelations(name string) *Relations {
	return &Relations{name: name}
}

func (r *Relations) Name() string { return r.name }
func (r *Relations) Len() int     { return len(r.members) }

// All returns the members in insertion order.
func (r *Relations) All() []Relation {
	return slices.Clone(r.members)
}

func (r *Relations) overlapsAny(candidate Relation) bool {
	for _, m := range r.members {
		if m.Overlaps(candidate) {
			return true
		}
	}
	return false
}

// Add inserts rel unless it overlaps a member. An equal relation always
// overlaps, so duplicates are rejected too.
func (r *Relations) Add(rel Relation) bool {
	if r.overlapsAny(rel) {
		return false
	}
	r.members = append(r.members, rel)
	return true
}

func (r *Relations) Has(rel Relation) bool {
	return slices.ContainsFunc(r.members, rel.Equal)
}

// Latest returns the running maximum under After, scanning in insertion
// order. The first member wins any comparison that does not resolve.
func (r *Relations) Latest() (Relation, bool) {
	if len(r.members) == 0 {
		return Relation{}, false
	}
	latest := r.members[0]
	for _, m := range r.members[1:] {
		if m.After(latest) {
			latest = m
		}
	}
	return latest, true
}

// Sorted orders the members chronologically, newest first when ascending is
// false.
func (r *Relations) Sorted(ascending bool) []Relation {
	sorted := slices.Clone(r.members)
	slices.SortStableFunc(sorted, compareRelations)
	if !ascending {
		slices.Reverse(sorted)
	}
	return sorted
}

// compareRelations is total for members of one Relations. Overlapping pairs
// only occur outside that invariant and fall back to the start date.
func compareRelations(a, b Relation) int {
	switch a.Compare(b) {
	case OrderBefore:
		return -1
	case OrderAfter:
		return 1
	}
	if c := a.Interval.Start().Compare(b.Interval.Start()); c != 0 {
		return c
	}
	return a.Interval.End().Compare(b.Interval.End())
}

type sampleOptions struct {
	tries int
	seed  *uint64
	rng   *rand.Rand
}

type SampleOption func(*sampleOptions)

// WithTries sets how many intervals are drawn before giving up.
func WithTries(n int) SampleOption {
	return func(o *sampleOptions) { o.tries = n }
}

// WithSeed seeds the first attempt only.
func WithSeed(seed uint64) SampleOption {
	return func(o *sampleOptions) { o.seed = &seed }
}

// WithRand supplies the generator for every attempt not covered by WithSeed.
func WithRand(rng *rand.Rand) SampleOption {
	return func(o *sampleOptions) { o.rng = rng }
}

// NewRandomValidRelationWith draws random intervals for entity until one
// fits without overlap, then inserts it. It reports false when every try
// collides; callers must treat that as the entity getting no edge.
func (r *Relations) NewRandomValidRelationWith(entity string, years []int, opts ...SampleOption) (Relation, bool, error) {
	o := sampleOptions{tries: DefaultTries}
	for _, opt := range opts {
		opt(&o)
	}
	if len(years) == 0 {
		return Relation{}, false, ErrEmptyYears
	}
	if o.rng == nil {
		o.rng = NewRand(nil)
	}

	for attempt := 0; attempt < o.tries; attempt++ {
		rng := o.rng
		if attempt == 0 && o.seed != nil {
			rng = NewRand(o.seed)
		}
		interval, err := SampleDateInterval(years, rng)
		if err != nil {
			return Relation{}, false, err
		}
		candidate := NewRelation(entity, interval)
		if r.Add(candidate) {
			return candidate, true, nil
		}
	}
	return Relation{}, false, nil
}

// Lines renders one "Relation <type> with <entity> ..." fragment per member
// in insertion order.
func (r *Relations) Lines() []string {
	lines := make([]string, 0, len(r.members))
	for _, m := range r.members {
		lines = append(lines, r.line(m))
	}
	return lines
}

func (r *Relations) line(m Relation) string {
	return fmt.Sprintf("Relation %s with %s", r.name, m)
}

func (r *Relations) String() string {
	return strings.Join(r.Lines(), ", ")
}

// Equal compares the label and membership, ignoring insertion order.
func (r *Relations) Equal(other *Relations) bool {
	if r.name != other.name || len(r.members) != len(other.members) {
		return false
	}
	for _, m := range r.members {
		if !other.Has(m) {
			return false
		}
	}
	return true
}

type RelationsRecord struct {
	RelName   string           `json:"rel_name"`
	Relations []RelationRecord `json:"relations"`
}

// Record serializes the members newest first.
func (r *Relations) Record() RelationsRecord {
	rec := RelationsRecord{
		RelName:   r.name,
		Relations: make([]RelationRecord, 0, len(r.members)),
	}
	for _, m := range r.Sorted(false) {
		rec.Relations = append(rec.Relations, m.Record())
	}
	return rec
}

// UnmarshalJSON requires both keys to be present. A collection without
// "relations" would otherwise decode to an empty type and vanish.
func (r *RelationsRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		RelName   *string           `json:"rel_name"`
		Relations *[]RelationRecord `json:"relations"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.RelName == nil {
		return fmt.Errorf("%w: missing rel_name", ErrCorruptGraph)
	}
	if raw.Relations == nil {
		return fmt.Errorf("%w: %s: missing relations", ErrCorruptGraph, *raw.RelName)
	}
	r.RelName = *raw.RelName
	r.Relations = *raw.Relations
	return nil
}

// RelationsFromRecord rebuilds a collection and fails if any stored relation
// overlaps an earlier one.
func RelationsFromRecord(rec RelationsRecord) (*Relations, error) {
	relations := NewRelations(rec.RelName)
	for i, rr := range rec.Relations {
		rel, err := RelationFromRecord(rr)
		if err != nil {
			return nil, fmt.Errorf("%w: %s[%d]: %v", ErrCorruptGraph, rec.RelName, i, err)
		}
		if !relations.Add(rel) {
			return nil, fmt.Errorf("%w: %s[%d] %s overlaps another %s relation",
				ErrCorruptGraph, rec.RelName, i, rel, rec.RelName)
		}
	}
	return relations, nil
}
