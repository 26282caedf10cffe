package graph

import "fmt"

// Relation is a timed link to a named entity. It orders by its interval.
type Relation struct {
	Name     string
	Interval DateInterval
}

func NewRelation(name string, interval DateInterval) Relation {
	return Relation{Name: name, Interval: interval}
}

func (r Relation) Overlaps(other Relation) bool {
	return r.Interval.Overlaps(other.Interval)
}

func (r Relation) Equal(other Relation) bool {
	return r.Name == other.Name && r.Interval.Equal(other.Interval)
}

func (r Relation) Compare(other Relation) Order {
	return r.Interval.Compare(other.Interval)
}

func (r Relation) After(other Relation) bool {
	return r.Interval.After(other.Interval)
}

func (r Relation) BeforeOrEqual(other Relation) bool {
	return r.Interval.BeforeOrEqual(other.Interval)
}

func (r Relation) String() string {
	return fmt.Sprintf("%s in time interval %s", r.Name, r.Interval)
}

type RelationRecord struct {
	Name         string         `json:"name"`
	DateInterval IntervalRecord `json:"date_interval"`
}

func (r Relation) Record() RelationRecord {
	return RelationRecord{
		Name:         r.Name,
		DateInterval: r.Interval.Record(DefaultDateLayout),
	}
}

func RelationFromRecord(rec RelationRecord) (Relation, error) {
	if rec.Name == "" {
		return Relation{}, fmt.Errorf("relation is missing a name")
	}
	interval, err := DateIntervalFromRecord(rec.DateInterval, DefaultDateLayout)
	if err != nil {
		return Relation{}, fmt.Errorf("relation %s: %w", rec.Name, err)
	}
	return NewRelation(rec.Name, interval), nil
}
