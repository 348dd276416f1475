package models

import (
	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/shopspring/decimal"
)

// Purchase is a single ticket unit. Buying N tickets creates N rows.
type Purchase struct {
	ID           int64          `db:"id" json:"id"`
	UserID       int64          `db:"user_id" json:"user_id"`
	EventID      int64          `db:"event_id" json:"event_id"`
	PurchaseDate types.DateTime `db:"purchase_date" json:"purchase_date"`
}

type Receipt struct {
	Reference   string          `json:"reference"`
	EventID     int64           `json:"event_id"`
	UserID      int64           `json:"user_id"`
	Quantity    int             `json:"quantity"`
	PurchaseIDs []int64         `json:"purchase_ids"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
	Remaining   int             `json:"remaining"`
	PurchasedAt types.DateTime  `json:"purchased_at"`
}

type Quote struct {
	EventID   int64           `json:"event_id"`
	EventName string          `json:"event_name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
	Available int             `json:"available"`
}

// Booking is one purchased ticket joined with its event.
type Booking struct {
	PurchaseID   int64          `db:"purchase_id" json:"purchase_id"`
	PurchaseDate types.DateTime `db:"purchase_date" json:"purchase_date"`
	EventID      int64          `db:"event_id" json:"event_id"`
	EventName    string         `db:"event_name" json:"event_name"`
	Description  string         `db:"description" json:"description"`
	Date         string         `db:"date" json:"date"`
	Location     string         `db:"location" json:"location"`
	Image        string         `db:"image" json:"image,omitempty"`
}
