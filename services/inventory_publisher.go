package services

import (
	"context"
	"fmt"
	"log/slog"

	"event-ticketing/utils"

	pubnub "github.com/pubnub/go/v7"
)

// Publisher sends one message to a realtime channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) error
}

type PubNubPublisher struct {
	PubNub *pubnub.PubNub
}

func NewPubNubPublisher(publishKey, subscribeKey, secretKey, userID string) *PubNubPublisher {
	pnConfig := pubnub.NewConfigWithUserId(pubnub.UserId(userID))
	pnConfig.PublishKey = publishKey
	pnConfig.SubscribeKey = subscribeKey
	pnConfig.SecretKey = secretKey

	return &PubNubPublisher{PubNub: pubnub.NewPubNub(pnConfig)}
}

func (p *PubNubPublisher) Publish(ctx context.Context, channel string, message any) error {
	_, _, err := p.PubNub.PublishWithContext(ctx).
		Channel(channel).
		Message(message).
		Execute()
	return err
}

// InventoryMessage is broadcast on event-<id> whenever tickets are sold.
type InventoryMessage struct {
	Type         string `json:"type"`
	EventID      int64  `json:"event_id"`
	TicketAmount int    `json:"ticket_amount"`
	SoldOut      bool   `json:"sold_out"`
}

func InventoryChannel(eventID int64) string {
	return fmt.Sprintf("event-%d", eventID)
}

// InventoryPublisher pushes inventory levels to subscribed clients. Calls go
// through a circuit breaker so a PubNub outage does not slow purchases down.
type InventoryPublisher struct {
	publisher Publisher
	breaker   *utils.CircuitBreaker
}

// NewInventoryPublisher returns a publisher that drops every message when p is
// nil, which is how the server runs without PubNub keys.
func NewInventoryPublisher(p Publisher, breaker *utils.CircuitBreaker) *InventoryPublisher {
	if breaker == nil {
		breaker = utils.NewCircuitBreaker("pubnub")
	}
	return &InventoryPublisher{publisher: p, breaker: breaker}
}

func (p *InventoryPublisher) PublishInventory(ctx context.Context, eventID int64, remaining int) error {
	if p == nil || p.publisher == nil {
		return nil
	}

	msg := InventoryMessage{
		Type:         "inventory",
		EventID:      eventID,
		TicketAmount: remaining,
		SoldOut:      remaining <= 0,
	}

	_, err := p.breaker.Execute(ctx, func() (any, error) {
		return nil, p.publisher.Publish(ctx, InventoryChannel(eventID), msg)
	})
	if err != nil {
		slog.Warn("failed to publish inventory", "event_id", eventID, "breaker", p.breaker.State().String(), "error", err)
		return err
	}
	return nil
}
