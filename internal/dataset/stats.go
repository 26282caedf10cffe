package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/parquet-go/parquet-go"

	"github.com/agenthands/stargraph/internal/core/graph"
)

var statsHeader = []string{"nodes", "relations", "mean_nodes_per_relation"}

// GraphStats is one row of dataset statistics. Nodes counts edges, since
// every edge ends at its own entity node.
type GraphStats struct {
	Nodes                int     `json:"nodes" parquet:"nodes"`
	Relations            int     `json:"relations" parquet:"relations"`
	MeanNodesPerRelation float64 `json:"mean_nodes_per_relation" parquet:"mean_nodes_per_relation"`
}

func StatsOf(g *graph.StarGraph) GraphStats {
	s := GraphStats{Nodes: g.NRelations(), Relations: g.NRelationTypes()}
	if mean, err := g.MeanNodesPerRelationType(); err == nil {
		s.MeanNodesPerRelation = mean
	}
	return s
}

func Stats(graphs []*graph.StarGraph) []GraphStats {
	out := make([]GraphStats, len(graphs))
	for i, g := range graphs {
		out[i] = StatsOf(g)
	}
	return out
}

func WriteStatsCSV(w io.Writer, stats []GraphStats) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(statsHeader); err != nil {
		return err
	}
	for _, s := range stats {
		row := []string{
			strconv.Itoa(s.Nodes),
			strconv.Itoa(s.Relations),
			strconv.FormatFloat(s.MeanNodesPerRelation, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteStatsParquet(path string, stats []GraphStats) error {
	if err := parquet.WriteFile(path, stats); err != nil {
		return fmt.Errorf("failed to write parquet stats: %w", err)
	}
	return nil
}
