package models

import (
	"encoding/json"
	"net/mail"
	"strconv"
	"strings"
	"time"
	"unicode"

	"event-ticketing/internal/status"

	"github.com/shopspring/decimal"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	MaxCommentLength = 400
)

type RegisterInput struct {
	Name     string `json:"user_name" form:"user_name"`
	Email    string `json:"email_id" form:"email_id"`
	Password string `json:"password" form:"password"`
	Confirm  string `json:"confirm" form:"confirm"`
	Address  string `json:"address_id" form:"address_id"`
	Contact  string `json:"contact_id" form:"contact_id"`
}

func (in RegisterInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return status.NewValidationError("user_name", "is required")
	}
	if strings.TrimSpace(in.Email) == "" {
		return status.NewValidationError("email_id", "is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return status.NewValidationError("email_id", "must be a valid email address")
	}
	if in.Password == "" {
		return status.NewValidationError("password", "is required")
	}
	if in.Confirm != "" && in.Confirm != in.Password {
		return status.NewValidationError("confirm", "passwords should match")
	}
	if in.Contact != "" && strings.IndexFunc(in.Contact, func(r rune) bool { return !unicode.IsDigit(r) }) >= 0 {
		return status.NewValidationError("contact_id", "contact number must contain only numbers")
	}
	return nil
}

type LoginInput struct {
	Name     string `json:"user_name" form:"user_name"`
	Password string `json:"password" form:"password"`
	Remember bool   `json:"remember_me" form:"remember_me"`
}

func (in LoginInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return status.NewValidationError("user_name", "enter user name")
	}
	if in.Password == "" {
		return status.NewValidationError("password", "enter user password")
	}
	return nil
}

// EventInput is the raw create/update payload. Numbers are kept as text until
// Validate so that form posts and JSON bodies share one parser.
type EventInput struct {
	Name         string      `json:"name" form:"name"`
	Location     string      `json:"location" form:"location"`
	Date         string      `json:"date" form:"date"`
	Time         string      `json:"time" form:"time"`
	TicketPrice  json.Number `json:"ticket_price" form:"ticket_price"`
	TicketAmount json.Number `json:"ticket_amount" form:"ticket_amount"`
	Description  string      `json:"description" form:"description"`
	Genre        string      `json:"genre" form:"genre"`
	Status       string      `json:"status" form:"status"`
}

// EventFields is a validated EventInput.
type EventFields struct {
	Name         string
	Location     string
	Date         string
	Time         string
	TicketPrice  decimal.Decimal
	TicketAmount int
	Description  string
	Genre        string
	Status       string
}

func (in EventInput) IsEmpty() bool {
	return in == EventInput{}
}

func (in EventInput) Validate() (EventFields, error) {
	var out EventFields

	out.Name = strings.TrimSpace(in.Name)
	if out.Name == "" {
		return out, status.NewValidationError("name", "is required")
	}
	out.Location = strings.TrimSpace(in.Location)
	if out.Location == "" {
		return out, status.NewValidationError("location", "is required")
	}

	date, err := time.Parse(DateLayout, strings.TrimSpace(in.Date))
	if err != nil {
		return out, status.NewValidationError("date", "must be formatted as YYYY-MM-DD")
	}
	out.Date = date.Format(DateLayout)

	clock, err := parseClock(strings.TrimSpace(in.Time))
	if err != nil {
		return out, status.NewValidationError("time", "must be formatted as HH:MM")
	}
	out.Time = clock.Format(TimeLayout)

	price, err := decimal.NewFromString(strings.TrimSpace(in.TicketPrice.String()))
	if err != nil {
		return out, status.NewValidationError("ticket_price", "must be a number")
	}
	if price.IsNegative() {
		return out, status.NewValidationError("ticket_price", "must not be negative")
	}
	out.TicketPrice = price

	amount, err := strconv.Atoi(strings.TrimSpace(in.TicketAmount.String()))
	if err != nil {
		return out, status.NewValidationError("ticket_amount", "must be a whole number")
	}
	if amount < 0 {
		return out, status.NewValidationError("ticket_amount", "must not be negative")
	}
	out.TicketAmount = amount

	switch in.Status {
	case "", EventStatusOpen, EventStatusInactive, EventStatusSoldOut, EventStatusCancelled:
		out.Status = in.Status
	default:
		return out, status.NewValidationError("status", "must be one of Open, Inactive, Sold Out, Cancelled")
	}

	out.Description = strings.TrimSpace(in.Description)
	out.Genre = strings.TrimSpace(in.Genre)
	return out, nil
}

// parseClock accepts HH:MM and the HH:MM:SS form the JSON API emits.
func parseClock(v string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, v)
	if err == nil {
		return t, nil
	}
	return time.Parse("15:04:05", v)
}

type PurchaseInput struct {
	Quantity int `json:"ticket_quantity" form:"ticket_quantity"`
}

func (in PurchaseInput) Validate() error {
	return ValidateQuantity(in.Quantity)
}

func ValidateQuantity(quantity int) error {
	if quantity < 1 {
		return status.NewValidationError("ticket_quantity", "must be at least 1")
	}
	return nil
}

type CommentInput struct {
	Text string `json:"text" form:"text"`
}

func (in CommentInput) Validate() (string, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return "", status.NewValidationError("text", "is required")
	}
	if len([]rune(text)) > MaxCommentLength {
		return "", status.NewValidationError("text", "must be at most 400 characters")
	}
	return text, nil
}
