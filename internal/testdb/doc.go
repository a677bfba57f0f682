//go:build integration

// Package testdb starts disposable Postgres and Redis containers for
// integration tests.
//
// Tests that use it carry the integration build tag and need a reachable
// Docker daemon:
//
//	go test -tags=integration ./...
//
// Each helper registers its own cleanup with t.Cleanup, so callers only
// ask for the resource they need:
//
//	func TestWidgetStore(t *testing.T) {
//	    db := testdb.StartPostgres(t)
//
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        store := postgres.NewPostgresWidgetStore(tx, nil)
//	        // changes are rolled back when fn returns
//	    })
//	}
package testdb
