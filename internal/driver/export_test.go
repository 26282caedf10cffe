package driver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/stargraph/internal/core/graph"
)

func testGraph(t *testing.T) *graph.StarGraph {
	t.Helper()
	var g graph.StarGraph
	data := `{"r1": {"rel_name": "r1", "relations": [
		{"name": "e3", "date_interval": {"start_date": "06-06-2002", "end_date": "06-05-2003"}},
		{"name": "e1", "date_interval": {"start_date": "06-05-2000", "end_date": "06-05-2001"}}]},
		"r0": {"rel_name": "r0", "relations": [
		{"name": "e2", "date_interval": {"start_date": "15-04-2005", "end_date": "02-03-2009"}}]}}`
	require.NoError(t, g.UnmarshalJSON([]byte(data)))
	return &g
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("uuid-%d", n)
	}
}

func TestExporter_Export(t *testing.T) {
	mock := &MockDriver{}
	x := NewExporter(mock, nil)
	x.NewID = sequentialIDs()

	id, err := x.Export(context.Background(), 7, testGraph(t))
	require.NoError(t, err)
	assert.Equal(t, "uuid-1", id)

	require.Len(t, mock.Executed, 2)
	assert.Equal(t, SaveCenterQuery, mock.Executed[0].Query)
	assert.Equal(t, "uuid-1", mock.Executed[0].Params["uuid"])
	assert.Equal(t, 7, mock.Executed[0].Params["graph_id"])

	assert.Equal(t, SaveRelationsQuery, mock.Executed[1].Query)
	assert.Equal(t, "uuid-1", mock.Executed[1].Params["center_uuid"])
	edges, ok := mock.Executed[1].Params["edges"].([]map[string]interface{})
	require.True(t, ok)
	require.Len(t, edges, 3)
	assert.Equal(t, map[string]interface{}{
		"type": "r0", "entity": "e2", "start": "2005-04-15", "end": "2009-03-02",
	}, edges[0])
	assert.Equal(t, "r1", edges[1]["type"])
}

func TestExporter_EmptyGraph(t *testing.T) {
	mock := &MockDriver{}
	x := NewExporter(mock, nil)

	id, err := x.Export(context.Background(), 0, graph.NewStarGraph())
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	require.Len(t, mock.Executed, 1)
	assert.Equal(t, SaveCenterQuery, mock.Executed[0].Query)
}

func TestExporter_ExportAll(t *testing.T) {
	mock := &MockDriver{}
	x := NewExporter(mock, nil)
	x.NewID = sequentialIDs()

	ids, err := x.ExportAll(context.Background(), []*graph.StarGraph{testGraph(t), testGraph(t)})
	require.NoError(t, err)
	assert.Equal(t, []string{"uuid-1", "uuid-2"}, ids)
	assert.Equal(t, 1, mock.Executed[2].Params["graph_id"])
}

func TestExporter_Errors(t *testing.T) {
	boom := errors.New("connection refused")

	_, err := NewExporter(&MockDriver{Err: boom}, nil).Export(context.Background(), 0, testGraph(t))
	assert.ErrorIs(t, err, boom)

	mock := &MockDriver{Err: boom, FailOn: SaveRelationsQuery}
	ids, err := NewExporter(mock, nil).ExportAll(context.Background(), []*graph.StarGraph{testGraph(t)})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, ids)
	assert.True(t, strings.Contains(err.Error(), "relations of graph 0"))
}

func TestExporter_Latest(t *testing.T) {
	mock := &MockDriver{MockResult: neo4j.EagerResult{
		Keys: []string{"type", "entity"},
		Records: []*neo4j.Record{
			{Keys: []string{"type", "entity"}, Values: []any{"r0", "e2"}},
			{Keys: []string{"type", "entity"}, Values: []any{"r1", "e3"}},
		},
	}}

	latest, err := NewExporter(mock, nil).Latest(context.Background(), "uuid-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"r0": "e2", "r1": "e3"}, latest)
	assert.Equal(t, LatestRelationsQuery, mock.Executed[0].Query)

	bad := &MockDriver{MockResult: neo4j.EagerResult{
		Records: []*neo4j.Record{{Keys: []string{"type", "entity"}, Values: []any{"r0", 3}}},
	}}
	_, err = NewExporter(bad, nil).Latest(context.Background(), "uuid-1")
	assert.Error(t, err)
}

func TestExporter_Delete(t *testing.T) {
	mock := &MockDriver{}
	require.NoError(t, NewExporter(mock, nil).Delete(context.Background(), "uuid-9"))
	assert.Equal(t, DeleteGraphQuery, mock.Executed[0].Query)
	assert.Equal(t, "uuid-9", mock.Executed[0].Params["center_uuid"])
}
