package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"event-ticketing/internal/status"
	"event-ticketing/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, channel string, message any) error {
	args := m.Called(ctx, channel, message)
	return args.Error(0)
}

func assertInventoryInvariant(t *testing.T, service *PurchaseService, eventID int64) {
	t.Helper()

	event, err := getEvent(context.Background(), service.App.DB(), eventID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, event.TicketAmount, 0)
	assert.LessOrEqual(t, event.TicketAmount, event.TicketCapacity)
	assert.Equal(t, countPurchases(t, service.App, eventID), event.TicketCapacity-event.TicketAmount)
}

func TestPurchaseService_Purchase_Success(t *testing.T) {
	app := setupTestApp(t)
	user := createTestUser(t, app, "alice")
	event := createTestEvent(t, app, "Jazz Night", "20.0", 5)
	service := NewPurchaseService(app, nil, nil)

	receipt, err := service.Purchase(context.Background(), event.ID, user.ID, 3)

	require.NoError(t, err)
	assert.Len(t, receipt.PurchaseIDs, 3)
	assert.True(t, receipt.Total.Equal(decimal.NewFromInt(60)), receipt.Total.String())
	assert.True(t, receipt.UnitPrice.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, 2, receipt.Remaining)
	assert.NotEmpty(t, receipt.Reference)
	assertInventoryInvariant(t, service, event.ID)

	_, err = service.Purchase(context.Background(), event.ID, user.ID, 3)

	var inv *status.InsufficientInventoryError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, 3, inv.Requested)
	assert.Equal(t, 2, inv.Available)

	stored, err := getEvent(context.Background(), app.DB(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.TicketAmount)
	assertInventoryInvariant(t, service, event.ID)
}

func TestPurchaseService_Purchase_InvalidQuantity(t *testing.T) {
	app := setupTestApp(t)
	user := createTestUser(t, app, "alice")
	event := createTestEvent(t, app, "Jazz Night", "20", 5)
	service := NewPurchaseService(app, nil, nil)

	for _, quantity := range []int{0, -1, -10} {
		_, err := service.Purchase(context.Background(), event.ID, user.ID, quantity)
		assert.ErrorIs(t, err, status.ErrValidation, "quantity %d", quantity)
	}

	stored, err := getEvent(context.Background(), app.DB(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.TicketAmount)
	assert.Zero(t, countPurchases(t, app, event.ID))
}

func TestPurchaseService_Purchase_UnknownEvent(t *testing.T) {
	app := setupTestApp(t)
	user := createTestUser(t, app, "alice")

	_, err := NewPurchaseService(app, nil, nil).Purchase(context.Background(), 404, user.ID, 1)

	assert.ErrorIs(t, err, status.ErrNotFound)
}

func TestPurchaseService_Purchase_SellsOutExactly(t *testing.T) {
	app := setupTestApp(t)
	user := createTestUser(t, app, "alice")
	event := createTestEvent(t, app, "Jazz Night", "20", 2)
	service := NewPurchaseService(app, nil, nil)

	receipt, err := service.Purchase(context.Background(), event.ID, user.ID, 2)
	require.NoError(t, err)
	assert.Zero(t, receipt.Remaining)

	_, err = service.Purchase(context.Background(), event.ID, user.ID, 1)
	assert.ErrorIs(t, err, status.ErrInsufficientInventory)

	stored, err := getEvent(context.Background(), app.DB(), event.ID)
	require.NoError(t, err)
	assert.True(t, stored.SoldOut)
}

func TestPurchaseService_Purchase_ConcurrentNeverOversells(t *testing.T) {
	app := setupTestApp(t)
	user := createTestUser(t, app, "alice")
	const capacity, buyers = 5, 20
	event := createTestEvent(t, app, "Jazz Night", "20", capacity)
	service := NewPurchaseService(app, nil, nil)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		soldOut   int
		other     []error
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.Purchase(context.Background(), event.ID, user.ID, 1)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, status.ErrInsufficientInventory):
				soldOut++
			default:
				other = append(other, err)
			}
		}()
	}
	wg.Wait()

	assert.Empty(t, other)
	assert.Equal(t, capacity, successes)
	assert.Equal(t, buyers-capacity, soldOut)

	stored, err := getEvent(context.Background(), app.DB(), event.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.TicketAmount)
	assertInventoryInvariant(t, service, event.ID)
}

func TestPurchaseService_Purchase_PublishesInventory(t *testing.T) {
	app := setupTestApp(t)
	user := createTestUser(t, app, "alice")
	event := createTestEvent(t, app, "Jazz Night", "20", 5)

	publisher := new(MockPublisher)
	publisher.On("Publish", mock.Anything, InventoryChannel(event.ID), InventoryMessage{
		Type:         "inventory",
		EventID:      event.ID,
		TicketAmount: 4,
		SoldOut:      false,
	}).Return(nil).Once()

	service := NewPurchaseService(app, NewInventoryPublisher(publisher, nil), nil)

	_, err := service.Purchase(context.Background(), event.ID, user.ID, 1)

	require.NoError(t, err)
	publisher.AssertExpectations(t)
}

func TestPurchaseService_Purchase_PublishFailureKeepsPurchase(t *testing.T) {
	app := setupTestApp(t)
	user := createTestUser(t, app, "alice")
	event := createTestEvent(t, app, "Jazz Night", "20", 5)

	publisher := new(MockPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("pubnub down"))
	service := NewPurchaseService(app, NewInventoryPublisher(publisher, utils.NewCircuitBreaker("test")), nil)

	receipt, err := service.Purchase(context.Background(), event.ID, user.ID, 1)

	require.NoError(t, err)
	assert.Equal(t, 4, receipt.Remaining)
	assert.Equal(t, 1, countPurchases(t, app, event.ID))
}

func TestPurchaseService_Quote(t *testing.T) {
	app := setupTestApp(t)
	event := createTestEvent(t, app, "Jazz Night", "12.50", 5)
	service := NewPurchaseService(app, nil, nil)

	quote, err := service.Quote(context.Background(), event.ID, 4)

	require.NoError(t, err)
	assert.Equal(t, "Jazz Night", quote.EventName)
	assert.True(t, quote.Total.Equal(decimal.NewFromInt(50)), quote.Total.String())
	assert.Equal(t, 5, quote.Available)
	assert.Zero(t, countPurchases(t, app, event.ID))

	_, err = service.Quote(context.Background(), event.ID, 6)
	assert.ErrorIs(t, err, status.ErrInsufficientInventory)

	_, err = service.Quote(context.Background(), event.ID, 0)
	assert.ErrorIs(t, err, status.ErrValidation)
}

func TestPurchaseService_ListBookingsForUser(t *testing.T) {
	app := setupTestApp(t)
	alice := createTestUser(t, app, "alice")
	bob := createTestUser(t, app, "bob")
	jazz := createTestEvent(t, app, "Jazz Night", "20", 5)
	rock := createTestEvent(t, app, "Rock Show", "30", 5)
	service := NewPurchaseService(app, nil, nil)

	_, err := service.Purchase(context.Background(), jazz.ID, alice.ID, 2)
	require.NoError(t, err)
	_, err = service.Purchase(context.Background(), rock.ID, alice.ID, 1)
	require.NoError(t, err)

	bookings, err := service.ListBookingsForUser(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, bookings, 3)
	assert.Equal(t, "Rock Show", bookings[0].EventName)
	assert.Equal(t, rock.ID, bookings[0].EventID)

	empty, err := service.ListBookingsForUser(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	tickets, err := service.TicketsForUserEvent(context.Background(), alice.ID, jazz.ID)
	require.NoError(t, err)
	assert.Len(t, tickets, 2)
}

func TestPurchaseStatus(t *testing.T) {
	assert.Equal(t, "success", purchaseStatus(nil))
	assert.Equal(t, "insufficient_inventory", purchaseStatus(&status.InsufficientInventoryError{}))
	assert.Equal(t, "invalid", purchaseStatus(status.NewValidationError("q", "bad")))
	assert.Equal(t, "not_found", purchaseStatus(status.NewNotFoundError("event", 1)))
	assert.Equal(t, "error", purchaseStatus(errors.New("disk full")))
}
