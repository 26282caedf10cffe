package graph

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// DefaultDateLayout renders dates as day-month-year, e.g. "15-08-2018".
const DefaultDateLayout = "02-01-2006"

var (
	ErrInvertedInterval = errors.New("interval start must not be after its end")
	ErrEmptyYears       = errors.New("no years to sample from")
)

// Order is the result of comparing two intervals. Intervals that share any
// instant are neither before nor after each other.
type Order int

const (
	OrderOverlapping Order = iota
	OrderBefore
	OrderAfter
)

func (o Order) String() string {
	switch o {
	case OrderBefore:
		return "before"
	case OrderAfter:
		return "after"
	default:
		return "overlapping"
	}
}

// DateInterval is a closed, immutable range of time with Start <= End.
type DateInterval struct {
	start time.Time
	end   time.Time
}

func NewDateInterval(start, end time.Time) (DateInterval, error) {
	if start.After(end) {
		return DateInterval{}, fmt.Errorf("%w: %s > %s", ErrInvertedInterval,
			start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	return DateInterval{start: start, end: end}, nil
}

// MustDateInterval is NewDateInterval for literals known to be valid.
func MustDateInterval(start, end time.Time) DateInterval {
	d, err := NewDateInterval(start, end)
	if err != nil {
		panic(err)
	}
	return d
}

func (d DateInterval) Start() time.Time { return d.start }
func (d DateInterval) End() time.Time   { return d.end }

func (d DateInterval) Equal(other DateInterval) bool {
	return d.start.Equal(other.start) && d.end.Equal(other.end)
}

// Compare places d relative to other. Only strictly disjoint intervals are
// ordered. Both ends are inclusive, so an interval ending on the day another
// starts overlaps it.
func (d DateInterval) Compare(other DateInterval) Order {
	switch {
	case d.end.Before(other.start):
		return OrderBefore
	case other.end.Before(d.start):
		return OrderAfter
	default:
		return OrderOverlapping
	}
}

// Overlaps reports whether the two intervals share at least one instant,
// including equal intervals, containment and touching boundaries.
func (d DateInterval) Overlaps(other DateInterval) bool {
	return d.Compare(other) == OrderOverlapping
}

func (d DateInterval) Before(other DateInterval) bool {
	return d.Compare(other) == OrderBefore
}

func (d DateInterval) BeforeOrEqual(other DateInterval) bool {
	return d.Equal(other) || d.Before(other)
}

// After is the negation of BeforeOrEqual, so it also holds for overlapping
// intervals that are not equal. Latest relies on exactly this.
func (d DateInterval) After(other DateInterval) bool {
	return !d.BeforeOrEqual(other)
}

func (d DateInterval) AfterOrEqual(other DateInterval) bool {
	return d.After(other) || d.Equal(other)
}

// String renders the interval the way it is shown to answering models.
func (d DateInterval) String() string {
	return d.start.Format(time.DateOnly) + " to " + d.end.Format(time.DateOnly)
}

// SampleDateInterval draws two independent dates from years and orders them.
// Each date has a uniform year from years, a uniform month and a uniform day
// within that month. A nil rng draws from fresh entropy.
func SampleDateInterval(years []int, rng *rand.Rand) (DateInterval, error) {
	if len(years) == 0 {
		return DateInterval{}, ErrEmptyYears
	}
	if rng == nil {
		rng = NewRand(nil)
	}

	first := sampleDate(years, rng)
	second := sampleDate(years, rng)
	if second.Before(first) {
		first, second = second, first
	}
	return DateInterval{start: first, end: second}, nil
}

func sampleDate(years []int, rng *rand.Rand) time.Time {
	year := years[rng.IntN(len(years))]
	month := time.Month(rng.IntN(12) + 1)
	day := rng.IntN(daysIn(year, month)) + 1
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// NewRand returns a generator seeded from seed, or from fresh entropy when
// seed is nil.
func NewRand(seed *uint64) *rand.Rand {
	if seed == nil {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(*seed, *seed))
}

// IntervalRecord is the serialized form of a DateInterval.
type IntervalRecord struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Record formats the interval with layout, DefaultDateLayout when empty.
func (d DateInterval) Record(layout string) IntervalRecord {
	if layout == "" {
		layout = DefaultDateLayout
	}
	return IntervalRecord{
		StartDate: d.start.Format(layout),
		EndDate:   d.end.Format(layout),
	}
}

// DateIntervalFromRecord parses rec with layout, DefaultDateLayout when empty.
func DateIntervalFromRecord(rec IntervalRecord, layout string) (DateInterval, error) {
	if layout == "" {
		layout = DefaultDateLayout
	}
	start, err := time.Parse(layout, rec.StartDate)
	if err != nil {
		return DateInterval{}, fmt.Errorf("invalid start_date %q: %w", rec.StartDate, err)
	}
	end, err := time.Parse(layout, rec.EndDate)
	if err != nil {
		return DateInterval{}, fmt.Errorf("invalid end_date %q: %w", rec.EndDate, err)
	}
	return NewDateInterval(start, end)
}
