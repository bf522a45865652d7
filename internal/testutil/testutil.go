package testutil

import (
	"database/sql"
	"net/http"
	"testing"

	"github.com/ForeverInLaw/airdealer/internal/db"
)

// OpenInMemoryDB opens an in-memory SQLite database and applies migrations.
// A shared cache is used so multiple connections see the same DB if needed.
// Cleanup is registered on the test.
func OpenInMemoryDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	d, err := db.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// WithBearer sets the Authorization header on an HTTP request.
func WithBearer(r *http.Request, token string) *http.Request {
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}
