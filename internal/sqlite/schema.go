package sqlite

// Every collection shares one table. seq preserves insertion order, which is
// the server order reported by List.
const (
	createRecords = `CREATE TABLE IF NOT EXISTS records (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    collection TEXT NOT NULL,
    id TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    body TEXT NOT NULL,
    UNIQUE (collection, id)
);`

	createRecordsIndex = `CREATE INDEX IF NOT EXISTS idx_records_collection ON records (collection, seq);`
)

var schemaStatements = []string{
	createRecords,
	createRecordsIndex,
}
