package core

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/agenthands/stargraph/internal/core/graph"
	"github.com/agenthands/stargraph/internal/core/model"
)

var ErrBatchSize = errors.New("batch size must be positive")

type InstanceOptions struct {
	Strategy graph.Strategy
	// NGraphs and NInstances cap the evaluation; negative means all.
	NGraphs    int
	NInstances int
}

// Instances asks one question per relation type of every graph: which
// entity holds the latest relation. Each graph is rendered once and the
// same context is shared by all of its questions.
func Instances(graphs []*graph.StarGraph, opts InstanceOptions, rng *rand.Rand) ([]model.Instance, error) {
	if rng == nil {
		rng = graph.NewRand(nil)
	}

	var instances []model.Instance
	for graphID, g := range graphs {
		if graphID == opts.NGraphs {
			break
		}

		lines, err := g.Render(opts.Strategy, rng)
		if err != nil {
			return nil, err
		}
		text := strings.Join(lines, "\n")

		latest := g.AllLatest()
		for _, relType := range g.Types() {
			rel, ok := latest[relType]
			if !ok {
				continue
			}
			if len(instances) == opts.NInstances {
				return instances, nil
			}
			instances = append(instances, model.Instance{
				GraphID:      graphID,
				RelationName: relType,
				TargetEntity: rel.Name,
				Context:      text,
			})
		}
	}
	return instances, nil
}

// TotalInstances is the number of questions Instances produces for the
// same limits, without rendering anything.
func TotalInstances(graphs []*graph.StarGraph, nGraphs, nInstances int) int {
	total := 0
	for graphID, g := range graphs {
		if graphID == nGraphs {
			break
		}
		total += len(g.AllLatest())
		if nInstances >= 0 && total >= nInstances {
			return nInstances
		}
	}
	return total
}

// Batches splits instances into consecutive groups of size; the last
// group may be shorter.
func Batches(instances []model.Instance, size int) ([][]model.Instance, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: %d", ErrBatchSize, size)
	}
	batches := make([][]model.Instance, 0, (len(instances)+size-1)/size)
	for start := 0; start < len(instances); start += size {
		end := min(start+size, len(instances))
		batches = append(batches, instances[start:end])
	}
	return batches, nil
}
