package sqlite

import "strings"

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:load.db?_pragma=foreign_keys(1)"
	//   "db.sqlite" (interpreted by the driver)
	//   ":memory:"
	DSN string
}

// inMemory reports whether the DSN names a private in-memory database. Each
// connection to such a database sees its own empty store, so the pool is
// pinned to a single connection.
func (c Config) inMemory() bool {
	return c.DSN == ":memory:" || strings.Contains(c.DSN, "mode=memory")
}
