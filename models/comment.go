package models

import (
	"github.com/pocketbase/pocketbase/tools/types"
)

type Comment struct {
	ID        int64          `db:"id" json:"id"`
	Text      string         `db:"text" json:"text"`
	CreatedAt types.DateTime `db:"created_at" json:"created_at"`
	UserID    int64          `db:"user_id" json:"user_id"`
	EventID   int64          `db:"event_id" json:"event_id"`
	Author    string         `db:"author" json:"author,omitempty"`
}
