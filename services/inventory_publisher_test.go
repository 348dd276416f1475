package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"event-ticketing/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestInventoryPublisher_Publish(t *testing.T) {
	publisher := new(MockPublisher)
	publisher.On("Publish", mock.Anything, "event-7", InventoryMessage{
		Type:         "inventory",
		EventID:      7,
		TicketAmount: 0,
		SoldOut:      true,
	}).Return(nil)

	err := NewInventoryPublisher(publisher, nil).PublishInventory(context.Background(), 7, 0)

	assert.NoError(t, err)
	publisher.AssertExpectations(t)
}

func TestInventoryPublisher_NilPublisherIsNoop(t *testing.T) {
	var nilPublisher *InventoryPublisher

	assert.NoError(t, nilPublisher.PublishInventory(context.Background(), 1, 1))
	assert.NoError(t, NewInventoryPublisher(nil, nil).PublishInventory(context.Background(), 1, 1))
}

func TestInventoryPublisher_BreakerOpensOnFailures(t *testing.T) {
	publisher := new(MockPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("pubnub down")).Times(2)

	breaker := utils.NewCircuitBreakerWithSettings("pubnub", utils.CircuitBreakerSettings{
		MaxRequests:  2,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		FailureRatio: 0.5,
	})
	p := NewInventoryPublisher(publisher, breaker)

	assert.Error(t, p.PublishInventory(context.Background(), 1, 3))
	assert.Error(t, p.PublishInventory(context.Background(), 1, 2))

	err := p.PublishInventory(context.Background(), 1, 1)

	assert.ErrorIs(t, err, utils.ErrCircuitOpen)
	publisher.AssertNumberOfCalls(t, "Publish", 2)
}

func TestInventoryChannel(t *testing.T) {
	assert.Equal(t, "event-42", InventoryChannel(42))
}
