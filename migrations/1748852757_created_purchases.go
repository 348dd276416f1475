package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(txApp core.App) error {
		return execAll(txApp, `
			CREATE TABLE purchases (
				id            INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id       INTEGER NOT NULL REFERENCES users (id),
				event_id      INTEGER NOT NULL REFERENCES events (id),
				purchase_date TEXT NOT NULL
			)
		`,
			"CREATE INDEX idx_purchases_user ON purchases (user_id)",
			"CREATE INDEX idx_purchases_event ON purchases (event_id)",
		)
	}, func(txApp core.App) error {
		return execAll(txApp, "DROP TABLE IF EXISTS purchases")
	})
}
