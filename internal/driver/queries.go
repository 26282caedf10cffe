package driver

var IndexQueries = []string{
	"CREATE INDEX ON :Center(uuid);",
	"CREATE INDEX ON :Center(graph_id);",
	"CREATE INDEX ON :Entity(graph_uuid);",
}

const (
	SaveCenterQuery = `
		MERGE (c:Center {uuid: $uuid})
		SET c.graph_id = $graph_id,
			c.created_at = $created_at
		RETURN c.uuid AS uuid
	`

	// Entities are scoped to their graph: e1 of one graph is unrelated to
	// e1 of another.
	SaveRelationsQuery = `
		MATCH (c:Center {uuid: $center_uuid})
		UNWIND $edges AS edge
		MERGE (e:Entity {name: edge.entity, graph_uuid: $center_uuid})
		CREATE (c)-[r:RELATION {type: edge.type, start: edge.start, end: edge.end}]->(e)
		RETURN count(r) AS created
	`

	LatestRelationsQuery = `
		MATCH (c:Center {uuid: $center_uuid})-[r:RELATION]->(e:Entity)
		WITH r.type AS type, e.name AS entity, r.end AS end
		ORDER BY end DESC
		WITH type, collect(entity)[0] AS entity
		RETURN type, entity
		ORDER BY type
	`

	DeleteGraphQuery = `
		MATCH (c:Center {uuid: $center_uuid})
		OPTIONAL MATCH (c)-[:RELATION]->(e:Entity)
		DETACH DELETE c, e
	`
)
