package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(txApp core.App) error {
		return execAll(txApp, `
			CREATE TABLE comments (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				text       TEXT NOT NULL,
				created_at TEXT NOT NULL,
				user_id    INTEGER NOT NULL REFERENCES users (id),
				event_id   INTEGER NOT NULL REFERENCES events (id)
			)
		`,
			"CREATE INDEX idx_comments_event ON comments (event_id)",
		)
	}, func(txApp core.App) error {
		return execAll(txApp, "DROP TABLE IF EXISTS comments")
	})
}
