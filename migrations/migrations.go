// Package migrations owns the SQLite schema of the ticketing tables. Every
// file registers one step with pocketbase's AppMigrations from its init
// function; `migrate up|down` and `serve` apply them in filename order.
package migrations

import (
	"github.com/pocketbase/pocketbase/core"
)

// execAll runs the statements in order on the migration's transaction.
func execAll(txApp core.App, stmts ...string) error {
	for _, stmt := range stmts {
		if _, err := txApp.DB().NewQuery(stmt).Execute(); err != nil {
			return err
		}
	}
	return nil
}
