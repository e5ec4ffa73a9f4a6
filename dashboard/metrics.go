package dashboard

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"honorbot/events"
)

// Metrics holds the Prometheus instruments fed from the event bus. They
// count committed outcomes only; events discarded with a rolled-back
// transaction never reach the bus.
type Metrics struct {
	checkinsClaimed  prometheus.Counter
	messageRewards   prometheus.Counter
	wagersResolved   *prometheus.CounterVec
	pointsAwarded    prometheus.Counter
	accountsCreated  prometheus.Counter
	balanceOverrides prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		checkinsClaimed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "honorbot_checkins_claimed_total",
			Help: "Daily check-ins successfully claimed.",
		}),
		messageRewards: promauto.NewCounter(prometheus.CounterOpts{
			Name: "honorbot_message_rewards_total",
			Help: "Message rewards granted.",
		}),
		wagersResolved: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "honorbot_wagers_resolved_total",
			Help: "Wagers resolved, by game and outcome.",
		}, []string{"game", "outcome"}),
		pointsAwarded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "honorbot_points_awarded_total",
			Help: "Points credited across all accrual paths.",
		}),
		accountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "honorbot_accounts_created_total",
			Help: "Accounts lazily created on first observed action.",
		}),
		balanceOverrides: promauto.NewCounter(prometheus.CounterOpts{
			Name: "honorbot_balance_overrides_total",
			Help: "Administrator balance overrides applied.",
		}),
	}
}

// Observe subscribes the instruments to the event bus.
func (m *Metrics) Observe(bus *events.Bus) {
	bus.Subscribe(events.EventTypeCheckinClaimed, func(ctx context.Context, e events.Event) {
		m.checkinsClaimed.Inc()
	})

	bus.Subscribe(events.EventTypeUserCreated, func(ctx context.Context, e events.Event) {
		m.accountsCreated.Inc()
	})

	bus.Subscribe(events.EventTypeWagerResolved, func(ctx context.Context, e events.Event) {
		resolved, ok := e.(events.WagerResolvedEvent)
		if !ok {
			return
		}
		outcome := "lost"
		if resolved.Won {
			outcome = "won"
		}
		m.wagersResolved.WithLabelValues(resolved.Kind, outcome).Inc()
	})

	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, e events.Event) {
		change, ok := e.(events.BalanceChangeEvent)
		if !ok {
			return
		}
		switch change.Kind {
		case events.BalanceChangeAdminOverride:
			m.balanceOverrides.Inc()
		case events.BalanceChangeMessageReward:
			m.messageRewards.Inc()
		}
		if delta := change.NewBalance - change.OldBalance; delta > 0 {
			m.pointsAwarded.Add(float64(delta))
		}
	})
}
