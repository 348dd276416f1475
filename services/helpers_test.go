package services

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"testing"

	_ "event-ticketing/migrations"
	"event-ticketing/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func setupTestApp(t *testing.T) core.App {
	t.Helper()

	dataDir, err := os.MkdirTemp("", "pb_test_*")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dataDir) })

	app := core.NewBaseApp(core.BaseAppConfig{DataDir: dataDir})
	require.NoError(t, app.Bootstrap())
	t.Cleanup(func() { _ = app.ResetBootstrapState() })

	require.NoError(t, app.RunAllMigrations())
	return app
}

func createTestUser(t *testing.T, app core.App, name string) *models.User {
	t.Helper()

	user, err := NewCredentialService(app, bcrypt.MinCost).Register(context.Background(), models.RegisterInput{
		Name:     name,
		Email:    name + "@example.com",
		Password: "password-" + name,
	})
	require.NoError(t, err)
	return user
}

func createTestEvent(t *testing.T, app core.App, name, price string, amount int) *models.Event {
	t.Helper()

	event, err := NewEventService(app).Create(context.Background(), models.EventInput{
		Name:         name,
		Location:     "The Tivoli",
		Date:         "2026-11-20",
		Time:         "19:30",
		TicketPrice:  json.Number(price),
		TicketAmount: json.Number(strconv.Itoa(amount)),
		Description:  name + " live",
	}, 0)
	require.NoError(t, err)
	return event
}

func countPurchases(t *testing.T, app core.App, eventID int64) int {
	t.Helper()

	var count int
	err := app.DB().Select("count(*)").
		From("purchases").
		Where(dbx.HashExp{"event_id": eventID}).
		Row(&count)
	require.NoError(t, err)
	return count
}
