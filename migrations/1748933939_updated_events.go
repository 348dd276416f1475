package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

// genre and status arrived with the second event schema.
func init() {
	m.Register(func(txApp core.App) error {
		return execAll(txApp,
			"ALTER TABLE events ADD COLUMN genre TEXT NOT NULL DEFAULT ''",
			"ALTER TABLE events ADD COLUMN status TEXT NOT NULL DEFAULT ''",
			"CREATE INDEX idx_events_genre ON events (genre)",
		)
	}, func(txApp core.App) error {
		return execAll(txApp,
			"DROP INDEX IF EXISTS idx_events_genre",
			"ALTER TABLE events DROP COLUMN status",
			"ALTER TABLE events DROP COLUMN genre",
		)
	})
}
