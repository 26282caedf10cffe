package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agenthands/stargraph/internal/core/graph"
)

// Exporter writes star graphs into a property graph: one :Center node per
// graph and one :RELATION edge per temporal relation. Edge dates are
// YYYY-MM-DD strings, which sort chronologically.
type Exporter struct {
	Driver GraphDriver
	Log    *zap.Logger
	NewID  func() string
}

func NewExporter(d GraphDriver, log *zap.Logger) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{Driver: d, Log: log, NewID: uuid.NewString}
}

// Export stores g under a fresh centre uuid, which it returns.
func (x *Exporter) Export(ctx context.Context, graphID int, g *graph.StarGraph) (string, error) {
	centerUUID := x.NewID()
	_, err := x.Driver.ExecuteQuery(ctx, SaveCenterQuery, map[string]interface{}{
		"uuid":       centerUUID,
		"graph_id":   graphID,
		"created_at": time.Now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to save centre of graph %d: %w", graphID, err)
	}

	edges := edgeParams(g)
	if len(edges) == 0 {
		return centerUUID, nil
	}
	if _, err := x.Driver.ExecuteQuery(ctx, SaveRelationsQuery, map[string]interface{}{
		"center_uuid": centerUUID,
		"edges":       edges,
	}); err != nil {
		return "", fmt.Errorf("failed to save relations of graph %d: %w", graphID, err)
	}

	x.Log.Debug("exported graph",
		zap.Int("graph_id", graphID),
		zap.String("center_uuid", centerUUID),
		zap.Int("relations", len(edges)))
	return centerUUID, nil
}

func (x *Exporter) ExportAll(ctx context.Context, graphs []*graph.StarGraph) ([]string, error) {
	ids := make([]string, 0, len(graphs))
	for i, g := range graphs {
		id, err := x.Export(ctx, i, g)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	x.Log.Info("exported dataset", zap.Int("graphs", len(ids)))
	return ids, nil
}

// Latest reads back the entity with the latest relation of each type.
func (x *Exporter) Latest(ctx context.Context, centerUUID string) (map[string]string, error) {
	res, err := x.Driver.ExecuteQuery(ctx, LatestRelationsQuery, map[string]interface{}{
		"center_uuid": centerUUID,
	})
	if err != nil {
		return nil, err
	}

	latest := make(map[string]string, len(res.Records))
	for _, rec := range res.Records {
		relType, _ := rec.Get("type")
		entity, _ := rec.Get("entity")
		t, ok1 := relType.(string)
		e, ok2 := entity.(string)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("unexpected latest relation record: %v", rec.Values)
		}
		latest[t] = e
	}
	return latest, nil
}

func (x *Exporter) Delete(ctx context.Context, centerUUID string) error {
	_, err := x.Driver.ExecuteQuery(ctx, DeleteGraphQuery, map[string]interface{}{
		"center_uuid": centerUUID,
	})
	return err
}

func edgeParams(g *graph.StarGraph) []map[string]interface{} {
	var edges []map[string]interface{}
	for _, relType := range g.Types() {
		rels, _ := g.Relations(relType)
		for _, rel := range rels.All() {
			edges = append(edges, map[string]interface{}{
				"type":   relType,
				"entity": rel.Name,
				"start":  rel.Interval.Start().Format(time.DateOnly),
				"end":    rel.Interval.End().Format(time.DateOnly),
			})
		}
	}
	return edges
}
