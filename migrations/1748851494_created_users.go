package migrations

import (
	"database/sql"
	"errors"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(txApp core.App) error {
		// The default "users" auth collection owns the table name; accounts
		// here are plain rows with integer ids referenced by purchases.
		collection, err := txApp.FindCollectionByNameOrId("users")
		switch {
		case err == nil:
			if err := txApp.Delete(collection); err != nil {
				return err
			}
		case !errors.Is(err, sql.ErrNoRows):
			return err
		}

		return execAll(txApp, `
			CREATE TABLE users (
				id            INTEGER PRIMARY KEY AUTOINCREMENT,
				name          TEXT NOT NULL UNIQUE,
				email         TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				address       TEXT NOT NULL DEFAULT '',
				contact       TEXT NOT NULL DEFAULT '',
				created       TEXT NOT NULL DEFAULT ''
			)
		`)
	}, func(txApp core.App) error {
		return execAll(txApp, "DROP TABLE IF EXISTS users")
	})
}
