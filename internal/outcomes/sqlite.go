package outcomes

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/JaimeStill/vetter/pkg/pagination"
	"github.com/JaimeStill/vetter/pkg/query"
)

//go:embed schema.sql
var schema string

// OpenSQLite opens (or creates) a SQLite database at path and applies the
// outcome schema. Use ":memory:" for an ephemeral store.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return db, nil
}

// NewSQLite creates a SQLite-backed outcome store. The schema must already
// be applied, see OpenSQLite.
func NewSQLite(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return newRepo(db, query.SQLite, projection.WithSchema(""), logger, pagination)
}
