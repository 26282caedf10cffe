package dataset

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/agenthands/stargraph/internal/config"
	"github.com/agenthands/stargraph/internal/core/graph"
)

var ErrInvalidOptions = errors.New("invalid generation options")

// Vocabulary and calendar limits. Years stay within four digits so every
// date fits the dd-mm-YYYY record layout.
const (
	MaxEntities  = 10000
	MaxRelations = 10000
	MinYear      = 1
	MaxYear      = 9999
)

type GenerateOptions struct {
	Entities  int
	Relations int
	StartYear int
	EndYear   int
	NGraphs   int
}

func OptionsFromConfig(cfg config.GenerateConfig) GenerateOptions {
	return GenerateOptions{
		Entities:  cfg.Entities,
		Relations: cfg.Relations,
		StartYear: cfg.StartYear,
		EndYear:   cfg.EndYear,
		NGraphs:   cfg.NGraphs,
	}
}

func (o GenerateOptions) Validate() error {
	switch {
	case o.Entities < 1 || o.Entities > MaxEntities:
		return fmt.Errorf("%w: entities must be in [1, %d], got %d", ErrInvalidOptions, MaxEntities, o.Entities)
	case o.Relations < 1 || o.Relations > MaxRelations:
		return fmt.Errorf("%w: relations must be in [1, %d], got %d", ErrInvalidOptions, MaxRelations, o.Relations)
	case o.NGraphs < 1:
		return fmt.Errorf("%w: n_graphs must be positive, got %d", ErrInvalidOptions, o.NGraphs)
	case o.StartYear < MinYear || o.EndYear > MaxYear:
		return fmt.Errorf("%w: years must be in [%d, %d], got %d to %d",
			ErrInvalidOptions, MinYear, MaxYear, o.StartYear, o.EndYear)
	case o.StartYear >= o.EndYear:
		return fmt.Errorf("%w: start year %d must be before end year %d", ErrInvalidOptions, o.StartYear, o.EndYear)
	}
	return nil
}

// EntityNames returns e1..eN.
func EntityNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("e%d", i+1)
	}
	return names
}

// RelationTypeNames returns r0..r(M-1).
func RelationTypeNames(m int) []string {
	names := make([]string, m)
	for i := range names {
		names[i] = fmt.Sprintf("r%d", i)
	}
	return names
}

// Generate builds opts.NGraphs independent star graphs from one random
// stream, so a seeded rng reproduces the whole dataset.
func Generate(opts GenerateOptions, rng *rand.Rand, log *zap.Logger) ([]*graph.StarGraph, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = graph.NewRand(nil)
	}
	if log == nil {
		log = zap.NewNop()
	}

	entities := EntityNames(opts.Entities)
	relTypes := RelationTypeNames(opts.Relations)

	graphs := make([]*graph.StarGraph, 0, opts.NGraphs)
	for i := 0; i < opts.NGraphs; i++ {
		g, err := graph.GenerateStarGraph(entities, relTypes, opts.StartYear, opts.EndYear, rng)
		if err != nil {
			return nil, fmt.Errorf("failed to generate graph %d: %w", i, err)
		}
		log.Debug("generated graph",
			zap.Int("index", i),
			zap.Int("relations", g.NRelations()),
			zap.Int("relation_types", g.NRelationTypes()))
		graphs = append(graphs, g)
	}
	log.Info("generated dataset", zap.Int("graphs", len(graphs)))
	return graphs, nil
}
