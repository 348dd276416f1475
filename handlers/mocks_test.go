package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"iter"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"event-ticketing/models"

	"github.com/labstack/echo/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCredentialStore struct{ mock.Mock }

func (m *MockCredentialStore) Register(ctx context.Context, in models.RegisterInput) (*models.User, error) {
	args := m.Called(ctx, in)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

type MockSessionManager struct{ mock.Mock }

func (m *MockSessionManager) Login(ctx context.Context, name, password string, remember bool) (*models.Session, error) {
	args := m.Called(ctx, name, password, remember)
	session, _ := args.Get(0).(*models.Session)
	return session, args.Error(1)
}

func (m *MockSessionManager) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockSessionManager) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

type MockEventCatalog struct{ mock.Mock }

func (m *MockEventCatalog) Create(ctx context.Context, in models.EventInput, createdBy int64) (*models.Event, error) {
	args := m.Called(ctx, in, createdBy)
	event, _ := args.Get(0).(*models.Event)
	return event, args.Error(1)
}

func (m *MockEventCatalog) Search(ctx context.Context, term string) iter.Seq2[models.Event, error] {
	return m.Called(ctx, term).Get(0).(iter.Seq2[models.Event, error])
}

func (m *MockEventCatalog) List(ctx context.Context) ([]models.Event, error) {
	args := m.Called(ctx)
	events, _ := args.Get(0).([]models.Event)
	return events, args.Error(1)
}

func (m *MockEventCatalog) Get(ctx context.Context, id int64) (*models.Event, error) {
	args := m.Called(ctx, id)
	event, _ := args.Get(0).(*models.Event)
	return event, args.Error(1)
}

func (m *MockEventCatalog) Update(ctx context.Context, id int64, in models.EventInput, actorID int64) (*models.Event, error) {
	args := m.Called(ctx, id, in, actorID)
	event, _ := args.Get(0).(*models.Event)
	return event, args.Error(1)
}

func (m *MockEventCatalog) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockEventCatalog) AttachImage(ctx context.Context, id int64, key string) error {
	return m.Called(ctx, id, key).Error(0)
}

type MockPurchaseEngine struct{ mock.Mock }

func (m *MockPurchaseEngine) Purchase(ctx context.Context, eventID, userID int64, quantity int) (*models.Receipt, error) {
	args := m.Called(ctx, eventID, userID, quantity)
	receipt, _ := args.Get(0).(*models.Receipt)
	return receipt, args.Error(1)
}

func (m *MockPurchaseEngine) Quote(ctx context.Context, eventID int64, quantity int) (*models.Quote, error) {
	args := m.Called(ctx, eventID, quantity)
	quote, _ := args.Get(0).(*models.Quote)
	return quote, args.Error(1)
}

func (m *MockPurchaseEngine) ListBookingsForUser(ctx context.Context, userID int64) ([]models.Booking, error) {
	args := m.Called(ctx, userID)
	bookings, _ := args.Get(0).([]models.Booking)
	return bookings, args.Error(1)
}

func (m *MockPurchaseEngine) TicketsForUserEvent(ctx context.Context, userID, eventID int64) ([]int64, error) {
	args := m.Called(ctx, userID, eventID)
	ids, _ := args.Get(0).([]int64)
	return ids, args.Error(1)
}

type MockCommentLedger struct{ mock.Mock }

func (m *MockCommentLedger) AddComment(ctx context.Context, eventID, userID int64, text string) (*models.Comment, error) {
	args := m.Called(ctx, eventID, userID, text)
	comment, _ := args.Get(0).(*models.Comment)
	return comment, args.Error(1)
}

func (m *MockCommentLedger) ListForEvent(ctx context.Context, eventID int64) ([]models.Comment, error) {
	args := m.Called(ctx, eventID)
	comments, _ := args.Get(0).([]models.Comment)
	return comments, args.Error(1)
}

type MockImageStore struct{ mock.Mock }

func (m *MockImageStore) Save(fh *multipart.FileHeader) (string, error) {
	args := m.Called(fh.Filename)
	return args.String(0), args.Error(1)
}

func (m *MockImageStore) Delete(key string) error {
	return m.Called(key).Error(0)
}

func (m *MockImageStore) Serve(w http.ResponseWriter, r *http.Request, key string) error {
	args := m.Called(key)
	if err := args.Error(0); err != nil {
		return err
	}
	w.WriteHeader(http.StatusOK)
	_, err := io.WriteString(w, "image:"+key)
	return err
}

const testToken = "valid-token"

var testUser = &models.User{ID: 7, Name: "alice", Email: "alice@example.com"}

type testServer struct {
	echo        *echo.Echo
	credentials *MockCredentialStore
	sessions    *MockSessionManager
	events      *MockEventCatalog
	purchases   *MockPurchaseEngine
	comments    *MockCommentLedger
	images      *MockImageStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	s := &testServer{
		echo:        echo.New(),
		credentials: new(MockCredentialStore),
		sessions:    new(MockSessionManager),
		events:      new(MockEventCatalog),
		purchases:   new(MockPurchaseEngine),
		comments:    new(MockCommentLedger),
		images:      new(MockImageStore),
	}
	s.sessions.On("CurrentUser", mock.Anything, testToken).Return(testUser, nil).Maybe()

	RegisterRoutes(s.echo, Dependencies{
		Credentials: s.credentials,
		Sessions:    s.sessions,
		Events:      s.events,
		Purchases:   s.purchases,
		Comments:    s.comments,
		Images:      s.images,
		Checks: map[string]HealthCheck{
			"database": func(context.Context) error { return nil },
		},
	})

	t.Cleanup(func() {
		s.credentials.AssertExpectations(t)
		s.events.AssertExpectations(t)
		s.purchases.AssertExpectations(t)
		s.comments.AssertExpectations(t)
		s.images.AssertExpectations(t)
	})
	return s
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func authed(req *http.Request) *http.Request {
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+testToken)
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func seqOf(events ...models.Event) iter.Seq2[models.Event, error] {
	return func(yield func(models.Event, error) bool) {
		for _, event := range events {
			if !yield(event, nil) {
				return
			}
		}
	}
}
