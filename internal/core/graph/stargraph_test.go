package graph

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func graphWith3Relations(t *testing.T) *StarGraph {
	t.Helper()
	g := NewStarGraph()
	for _, rel := range []Relation{
		NewRelation("e1", interval(t, day(2000, 5, 6), day(2001, 5, 6))),
		NewRelation("e2", interval(t, day(2001, 6, 6), day(2002, 5, 6))),
		NewRelation("e3", interval(t, day(2002, 6, 6), day(2003, 5, 6))),
	} {
		require.True(t, g.AddEdge("r1", rel))
	}
	return g
}

func graphWith2Types(t *testing.T) *StarGraph {
	t.Helper()
	g := graphWith3Relations(t)
	for _, rel := range []Relation{
		NewRelation("e4", interval(t, day(2030, 5, 6), day(2031, 7, 29))),
		NewRelation("e5", interval(t, day(2005, 4, 15), day(2009, 3, 2))),
		NewRelation("e6", interval(t, day(2022, 3, 19), day(2029, 4, 6))),
	} {
		require.True(t, g.AddEdge("r2", rel))
	}
	return g
}

func TestStarGraph_Lines(t *testing.T) {
	g := graphWith3Relations(t)
	lines := g.Lines()
	assert.Len(t, lines, 3)
	assert.Equal(t, 3, g.Len())
	assert.Equal(t, "Relation r1 with e1 in time interval 2000-05-06 to 2001-05-06", lines[0])
}

func TestStarGraph_Empty(t *testing.T) {
	g := NewStarGraph()
	assert.Empty(t, g.Lines())
	assert.Equal(t, 0, g.Len())
	assert.Equal(t, "", g.String())

	_, err := g.MeanNodesPerRelationType()
	assert.ErrorIs(t, err, ErrNoRelationTypes)
}

func TestStarGraph_ZeroValueAddEdge(t *testing.T) {
	var g StarGraph
	assert.True(t, g.AddEdge("r1", NewRelation("e1", interval(t, day(2000, 1, 1), day(2000, 2, 1)))))
	assert.Equal(t, 1, g.Len())
}

func TestStarGraph_String(t *testing.T) {
	g := graphWith3Relations(t)
	assert.Len(t, strings.Split(g.String(), "\n"), 3)
}

func TestStarGraph_Queries(t *testing.T) {
	g := graphWith2Types(t)

	assert.Equal(t, 2, g.NRelationTypes())
	assert.Equal(t, 6, g.NRelations())
	assert.Equal(t, []string{"r1", "r2"}, g.Types())

	mean, err := g.MeanNodesPerRelationType()
	require.NoError(t, err)
	assert.InDelta(t, 3.0, mean, 1e-9)

	latest := g.AllLatest()
	require.Len(t, latest, 2)
	assert.Equal(t, "e3", latest["r1"].Name)
	assert.Equal(t, "e4", latest["r2"].Name)

	assert.True(t, g.Has("r2", NewRelation("e5", interval(t, day(2005, 4, 15), day(2009, 3, 2)))))
	assert.False(t, g.Has("r1", NewRelation("e5", interval(t, day(2005, 4, 15), day(2009, 3, 2)))))
	assert.False(t, g.Has("r9", NewRelation("e5", interval(t, day(2005, 4, 15), day(2009, 3, 2)))))
}

func TestStarGraph_AddEdgeOverlap(t *testing.T) {
	g := NewStarGraph()
	require.True(t, g.AddEdge("r1", NewRelation("e1", interval(t, day(2000, 5, 6), day(2001, 5, 6)))))

	assert.False(t, g.AddEdge("r1", NewRelation("e2", interval(t, day(2000, 7, 1), day(2000, 8, 1)))))
	r1, ok := g.Relations("r1")
	require.True(t, ok)
	assert.Equal(t, 1, r1.Len())

	// A different relation type has no overlap constraint.
	assert.True(t, g.AddEdge("r2", NewRelation("e2", interval(t, day(2000, 7, 1), day(2000, 8, 1)))))
}

func TestStarGraph_NRelationTypesMatchesKeys(t *testing.T) {
	g := NewStarGraph()
	for i := 0; i < 4; i++ {
		relType := fmt.Sprintf("r%d", i%3)
		g.AddEdge(relType, NewRelation(fmt.Sprintf("e%d", i), interval(t, day(2000+i*2, 1, 1), day(2000+i*2, 6, 1))))
	}
	assert.Equal(t, 3, g.NRelationTypes())
}

func TestStarGraph_RecordRoundTrip(t *testing.T) {
	g := graphWith2Types(t)

	back, err := FromRecord(g.Record())
	require.NoError(t, err)
	assert.True(t, g.Equal(back))
	assert.True(t, back.Equal(g))

	data, err := json.Marshal(g)
	require.NoError(t, err)

	var decoded StarGraph
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, g.Equal(&decoded))
}

func TestStarGraph_RecordIsDescending(t *testing.T) {
	rec := graphWith2Types(t).Record()
	require.Contains(t, rec, "r2")
	assert.Equal(t, "r2", rec["r2"].RelName)

	var got []string
	for _, r := range rec["r2"].Relations {
		got = append(got, r.Name)
	}
	assert.Equal(t, []string{"e4", "e6", "e5"}, got)
}

func TestStarGraph_JSONShape(t *testing.T) {
	g := NewStarGraph()
	require.True(t, g.AddEdge("r1", NewRelation("e1", interval(t, day(2018, 8, 15), day(2018, 8, 20)))))

	data, err := json.Marshal(g)
	require.NoError(t, err)
	assert.JSONEq(t, `{"r1":{"rel_name":"r1","relations":[
		{"name":"e1","date_interval":{"start_date":"15-08-2018","end_date":"20-08-2018"}}]}}`, string(data))
}

func TestFromRecord_FailsLoudly(t *testing.T) {
	overlapping := GraphRecord{"r1": {
		RelName: "r1",
		Relations: []RelationRecord{
			{Name: "e1", DateInterval: IntervalRecord{StartDate: "06-05-2000", EndDate: "06-05-2001"}},
			{Name: "e2", DateInterval: IntervalRecord{StartDate: "01-07-2000", EndDate: "01-08-2000"}},
		},
	}}
	_, err := FromRecord(overlapping)
	assert.ErrorIs(t, err, ErrCorruptGraph)

	mislabelled := GraphRecord{"r1": {RelName: "r2"}}
	_, err = FromRecord(mislabelled)
	assert.ErrorIs(t, err, ErrCorruptGraph)

	badDate := GraphRecord{"r1": {
		RelName:   "r1",
		Relations: []RelationRecord{{Name: "e1", DateInterval: IntervalRecord{StartDate: "2000-05-06", EndDate: "06-05-2001"}}},
	}}
	_, err = FromRecord(badDate)
	assert.ErrorIs(t, err, ErrCorruptGraph)

	var g StarGraph
	assert.Error(t, json.Unmarshal([]byte(`{"r1": {"rel_name": "r1", "relations": [{"name": "e1"}]}}`), &g))

	for _, data := range []string{
		`{"r1": {"rel_name": "r1"}}`,
		`{"r1": {"rel_name": "r1", "relations": null}}`,
		`{"r1": {"relations": []}}`,
	} {
		err := json.Unmarshal([]byte(data), &g)
		require.Error(t, err, data)
		assert.Contains(t, err.Error(), "missing", data)
	}
}

func TestStarGraph_EmptyTypeSurvivesRoundTrip(t *testing.T) {
	var g StarGraph
	require.NoError(t, json.Unmarshal([]byte(`{"r0": {"rel_name": "r0", "relations": []}}`), &g))
	assert.Equal(t, 1, g.NRelationTypes())
	assert.Equal(t, 0, g.Len())

	data, err := json.Marshal(&g)
	require.NoError(t, err)
	assert.JSONEq(t, `{"r0": {"rel_name": "r0", "relations": []}}`, string(data))
}

func TestStarGraph_EqualDiffers(t *testing.T) {
	a := graphWith3Relations(t)
	b := graphWith3Relations(t)
	assert.True(t, a.Equal(b))

	require.True(t, b.AddEdge("r2", NewRelation("e9", interval(t, day(2010, 1, 1), day(2010, 2, 1)))))
	assert.False(t, a.Equal(b))

	c := NewStarGraph()
	for _, rel := range []Relation{
		NewRelation("e1", interval(t, day(2000, 5, 6), day(2001, 5, 6))),
		NewRelation("e2", interval(t, day(2001, 6, 6), day(2002, 5, 6))),
		NewRelation("e3", interval(t, day(2002, 6, 6), day(2003, 5, 6))),
	} {
		require.True(t, c.AddEdge("r7", rel))
	}
	assert.False(t, a.Equal(c), "same edges under a different type are not equal")
}

func TestGenerateStarGraph(t *testing.T) {
	entities := []string{"e1", "e2", "e3", "e4", "e5", "e6", "e7", "e8", "e9"}
	relTypes := []string{"r0", "r1", "r2", "r3"}

	g, err := GenerateStarGraph(entities, relTypes, 2000, 2025, NewRand(ptr(uint64(17))))
	require.NoError(t, err)

	assert.LessOrEqual(t, g.Len(), len(entities))
	assert.Positive(t, g.Len())
	for _, relType := range g.Types() {
		assert.Contains(t, relTypes, relType)
		r, _ := g.Relations(relType)
		assert.Equal(t, relType, r.Name())
		members := r.All()
		for i := range members {
			assert.Contains(t, entities, members[i].Name)
			assert.GreaterOrEqual(t, members[i].Interval.Start().Year(), 2000)
			assert.Less(t, members[i].Interval.End().Year(), 2025)
			for j := i + 1; j < len(members); j++ {
				assert.False(t, members[i].Overlaps(members[j]))
			}
		}
	}

	again, err := GenerateStarGraph(entities, relTypes, 2000, 2025, NewRand(ptr(uint64(17))))
	require.NoError(t, err)
	assert.True(t, g.Equal(again), "same seed, same graph")
}

func TestGenerateStarGraph_InvalidInput(t *testing.T) {
	_, err := GenerateStarGraph([]string{"e1"}, []string{"r0"}, 2025, 2000, nil)
	assert.ErrorIs(t, err, ErrInvalidYears)

	_, err = GenerateStarGraph([]string{"e1"}, nil, 2000, 2025, nil)
	assert.ErrorIs(t, err, ErrNoRelationTypes)
}

func TestGenerateStarGraph_DropsEntitiesThatCollide(t *testing.T) {
	entities := make([]string, 60)
	for i := range entities {
		entities[i] = fmt.Sprintf("e%d", i+1)
	}
	// One relation type and one year cannot hold sixty disjoint intervals.
	g, err := GenerateStarGraph(entities, []string{"r0"}, 2000, 2001, NewRand(ptr(uint64(2))))
	require.NoError(t, err)
	assert.Less(t, g.Len(), len(entities))
	assert.Equal(t, 1, g.NRelationTypes())
}
