package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(txApp core.App) error {
		return execAll(txApp, `
			CREATE TABLE events (
				id              INTEGER PRIMARY KEY AUTOINCREMENT,
				name            TEXT NOT NULL,
				location        TEXT NOT NULL,
				date            TEXT NOT NULL,
				time            TEXT NOT NULL,
				ticket_price    TEXT NOT NULL DEFAULT '0',
				ticket_amount   INTEGER NOT NULL,
				ticket_capacity INTEGER NOT NULL,
				description     TEXT NOT NULL DEFAULT '',
				image           TEXT NOT NULL DEFAULT '',
				created_by      INTEGER NOT NULL,
				created         TEXT NOT NULL DEFAULT '',
				updated         TEXT NOT NULL DEFAULT '',
				CHECK (ticket_amount >= 0),
				CHECK (ticket_capacity >= ticket_amount)
			)
		`,
			"CREATE INDEX idx_events_name ON events (name)",
		)
	}, func(txApp core.App) error {
		return execAll(txApp, "DROP TABLE IF EXISTS events")
	})
}
