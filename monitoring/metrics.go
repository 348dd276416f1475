package monitoring

import (
	"context"
	"log/slog"
	"runtime"
	"strconv"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	ticketInventory = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "event_tickets_remaining",
			Help: "Tickets still available per event",
		},
		[]string{"event_id"},
	)

	purchaseOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchase_operations_total",
			Help: "Purchase attempts by outcome",
		},
		[]string{"status"},
	)

	ticketsSold = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_sold_total",
			Help: "Tickets sold since process start",
		},
	)

	purchaseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "purchase_duration_seconds",
			Help:    "Duration of the purchase transaction",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)

	loginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "Login attempts by outcome",
		},
		[]string{"result"},
	)

	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_sessions_total",
			Help: "Sessions currently stored in Redis",
		},
	)

	goroutineCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_goroutines_total",
			Help: "Current number of active goroutines",
		},
	)
)

// Monitor refreshes the gauges that are cheaper to sample than to track on
// every write. The Track methods are safe on a nil Monitor.
type Monitor struct {
	db       dbx.Builder
	redis    redis.Cmdable
	interval time.Duration
}

func NewMonitor(db dbx.Builder, redisClient redis.Cmdable, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Monitor{db: db, redis: redisClient, interval: interval}
}

// Run samples the gauges until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Collect(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Collect(ctx)
		}
	}
}

func (m *Monitor) Collect(ctx context.Context) {
	if m.db != nil {
		m.collectInventoryMetrics(ctx)
	}
	if m.redis != nil {
		m.collectSessionMetrics(ctx)
	}
	m.collectGoroutineMetrics()
}

func (m *Monitor) collectInventoryMetrics(ctx context.Context) {
	var rows []struct {
		ID           int64 `db:"id"`
		TicketAmount int   `db:"ticket_amount"`
	}
	err := m.db.Select("id", "ticket_amount").
		From("events").
		WithContext(ctx).
		All(&rows)
	if err != nil {
		slog.Warn("failed to collect inventory metrics", "error", err)
		return
	}

	ticketInventory.Reset()
	for _, row := range rows {
		SetInventory(row.ID, row.TicketAmount)
	}
}

func (m *Monitor) collectSessionMetrics(ctx context.Context) {
	var (
		cursor uint64
		total  int
	)
	for {
		keys, next, err := m.redis.Scan(ctx, cursor, "session:*", 100).Result()
		if err != nil {
			slog.Warn("failed to collect session metrics", "error", err)
			return
		}
		total += len(keys)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	activeSessions.Set(float64(total))
}

func (m *Monitor) collectGoroutineMetrics() {
	goroutineCount.Set(float64(runtime.NumGoroutine()))
}

// TrackPurchase records one purchase attempt. quantity counts towards
// tickets_sold_total only for successful purchases.
func (m *Monitor) TrackPurchase(status string, quantity int, duration time.Duration) {
	purchaseOperations.WithLabelValues(status).Inc()
	purchaseDuration.Observe(duration.Seconds())
	if status == PurchaseSuccess {
		ticketsSold.Add(float64(quantity))
	}
}

func (m *Monitor) TrackLogin(result string) {
	loginAttempts.WithLabelValues(result).Inc()
}

func SetInventory(eventID int64, remaining int) {
	ticketInventory.WithLabelValues(strconv.FormatInt(eventID, 10)).Set(float64(remaining))
}

const (
	PurchaseSuccess      = "success"
	PurchaseInsufficient = "insufficient_inventory"
	PurchaseInvalid      = "invalid"
	PurchaseNotFound     = "not_found"
	PurchaseError        = "error"
)
