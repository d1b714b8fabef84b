// Package sqlitetest opens throwaway in-memory SQLite databases carrying
// the application schema, for repository and service tests.
package sqlitetest

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/iliyamo/restaurant-table-reservation/internal/database"
)

//go:embed schema.sql
var schema string

var seq atomic.Int64

// Open returns a fresh database private to t.  A single connection is
// kept so the in-memory database lives until t finishes.
func Open(t testing.TB) *sql.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=on", name, seq.Add(1))

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	t.Cleanup(func() { _ = db.Close() })

	if err := database.Exec(context.Background(), db, schema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}
