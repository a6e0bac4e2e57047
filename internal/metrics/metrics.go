package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ConnectionsActive tracks live websocket connections.
	ConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "threadtalk_connections_active",
			Help: "Currently open websocket connections",
		},
	)

	// SubscriptionsTotal counts accepted thread subscriptions.
	SubscriptionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "threadtalk_subscriptions_total",
			Help: "Total accepted thread subscriptions",
		},
	)

	// MessagesPosted counts messages durably persisted via the submit path.
	MessagesPosted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "threadtalk_messages_posted_total",
			Help: "Total messages persisted",
		},
	)

	// EventsDelivered counts per-connection event deliveries.
	EventsDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "threadtalk_events_delivered_total",
			Help: "Total server events handed to live connections",
		},
	)
)
