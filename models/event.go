package models

import (
	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/shopspring/decimal"
)

const (
	EventStatusOpen      = "Open"
	EventStatusInactive  = "Inactive"
	EventStatusSoldOut   = "Sold Out"
	EventStatusCancelled = "Cancelled"
)

type Event struct {
	ID             int64           `db:"id" json:"id"`
	Name           string          `db:"name" json:"name"`
	Location       string          `db:"location" json:"location"`
	Date           string          `db:"date" json:"date"` // YYYY-MM-DD
	Time           string          `db:"time" json:"time"` // HH:MM
	TicketPrice    decimal.Decimal `db:"ticket_price" json:"ticket_price"`
	TicketAmount   int             `db:"ticket_amount" json:"ticket_amount"`
	TicketCapacity int             `db:"ticket_capacity" json:"ticket_capacity"`
	Description    string          `db:"description" json:"description"`
	Image          string          `db:"image" json:"image,omitempty"`
	Genre          string          `db:"genre" json:"genre,omitempty"`
	Status         string          `db:"status" json:"status,omitempty"`
	CreatedBy      int64           `db:"created_by" json:"created_by,omitempty"`
	Created        types.DateTime  `db:"created" json:"created"`
	Updated        types.DateTime  `db:"updated" json:"updated"`

	SoldOut bool `db:"-" json:"sold_out"`
}

// Sold is the number of tickets already purchased.
func (e *Event) Sold() int {
	return e.TicketCapacity - e.TicketAmount
}

func (e *Event) IsSoldOut() bool {
	return e.TicketAmount <= 0
}
