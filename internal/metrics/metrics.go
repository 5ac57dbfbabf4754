package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   prometheus.CounterVec
	HTTPRequestDuration prometheus.HistogramVec

	// Cache metrics
	CacheHitsTotal   prometheus.CounterVec
	CacheMissesTotal prometheus.CounterVec

	// Feed metrics
	FeedGenerationTime prometheus.HistogramVec
	FeedPostsReturned  prometheus.HistogramVec

	// Moderation metrics
	PostsFlaggedTotal   prometheus.CounterVec
	PostsUnflaggedTotal prometheus.Counter

	// Messaging metrics
	MessagesSentTotal       prometheus.Counter
	ConversationsCreated    prometheus.Counter
	WebsocketClientsGauge   prometheus.Gauge
	NotificationsCreated    prometheus.CounterVec
	RealtimeEventsBroadcast prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),
			CacheHitsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_hits_total",
					Help: "Total number of cache hits",
				},
				[]string{"cache_name"},
			),
			CacheMissesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_misses_total",
					Help: "Total number of cache misses",
				},
				[]string{"cache_name"},
			),
			FeedGenerationTime: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "feed_generation_seconds",
					Help:    "Time to assemble a feed page",
					Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1},
				},
				[]string{"feed"},
			),
			FeedPostsReturned: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "feed_posts_returned",
					Help:    "Posts returned per feed request",
					Buckets: []float64{0, 1, 5, 10, 25, 50},
				},
				[]string{"feed"},
			),
			PostsFlaggedTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "posts_flagged_total",
					Help: "Posts flagged by moderators",
				},
				[]string{"reason"},
			),
			PostsUnflaggedTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "posts_unflagged_total",
					Help: "Posts restored by moderators",
				},
			),
			MessagesSentTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "messages_sent_total",
					Help: "Direct messages sent",
				},
			),
			ConversationsCreated: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "conversations_created_total",
					Help: "Conversations created",
				},
			),
			WebsocketClientsGauge: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "websocket_clients",
					Help: "Currently connected websocket clients",
				},
			),
			NotificationsCreated: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "notifications_created_total",
					Help: "Notifications created",
				},
				[]string{"type"},
			),
			RealtimeEventsBroadcast: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "realtime_events_broadcast_total",
					Help: "Realtime insert events pushed to subscribers",
				},
				[]string{"table"},
			),
		}
	})
	return instance
}

// Get returns the metrics instance, initializing on first use
func Get() *Metrics {
	return Initialize()
}
