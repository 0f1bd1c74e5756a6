package storage

// snapshotQueries read one relation each. They run inside a single read
// transaction so all relations come from the same state of the graph.
var snapshotQueries = map[string]string{
	"users": `
			MATCH (u:User)
			RETURN u.id AS id, u.username AS username, u.created_at AS created_at
			ORDER BY id
		`,
	"photos": `
			MATCH (u:User)-[:POSTED]->(p:Photo)
			RETURN p.id AS id, u.id AS user_id, p.image_url AS image_url, p.created_at AS created_at
			ORDER BY id
		`,
	"likes": `
			MATCH (u:User)-[l:LIKED]->(p:Photo)
			RETURN u.id AS user_id, p.id AS photo_id, l.created_at AS created_at
		`,
	"comments": `
			MATCH (u:User)-[c:COMMENTED]->(p:Photo)
			RETURN c.id AS id, c.text AS text, u.id AS user_id, p.id AS photo_id, c.created_at AS created_at
		`,
	"follows": `
			MATCH (a:User)-[f:FOLLOWS]->(b:User)
			RETURN a.id AS follower_id, b.id AS followee_id, f.created_at AS created_at
		`,
	"tags": `
			MATCH (t:Tag)
			RETURN t.id AS id, t.name AS name
			ORDER BY id
		`,
	"photo_tags": `
			MATCH (p:Photo)-[:TAGGED]->(t:Tag)
			RETURN p.id AS photo_id, t.id AS tag_id
		`,
}

// seedQueries write a snapshot with MERGE, one UNWIND batch per relation.
var seedQueries = []struct {
	relation string
	query    string
}{
	{"users", `
			UNWIND $rows AS row
			MERGE (u:User {id: row.id})
			SET u.username = row.username, u.created_at = row.created_at
		`},
	{"photos", `
			UNWIND $rows AS row
			MATCH (u:User {id: row.user_id})
			MERGE (p:Photo {id: row.id})
			SET p.image_url = row.image_url, p.created_at = row.created_at
			MERGE (u)-[:POSTED]->(p)
		`},
	{"likes", `
			UNWIND $rows AS row
			MATCH (u:User {id: row.user_id})
			MATCH (p:Photo {id: row.photo_id})
			CREATE (u)-[:LIKED {created_at: row.created_at}]->(p)
		`},
	{"comments", `
			UNWIND $rows AS row
			MATCH (u:User {id: row.user_id})
			MATCH (p:Photo {id: row.photo_id})
			CREATE (u)-[:COMMENTED {id: row.id, text: row.text, created_at: row.created_at}]->(p)
		`},
	{"follows", `
			UNWIND $rows AS row
			MATCH (a:User {id: row.follower_id})
			MATCH (b:User {id: row.followee_id})
			CREATE (a)-[:FOLLOWS {created_at: row.created_at}]->(b)
		`},
	{"tags", `
			UNWIND $rows AS row
			MERGE (t:Tag {id: row.id})
			SET t.name = row.name
		`},
	{"photo_tags", `
			UNWIND $rows AS row
			MATCH (p:Photo {id: row.photo_id})
			MATCH (t:Tag {id: row.tag_id})
			CREATE (p)-[:TAGGED]->(t)
		`},
}
