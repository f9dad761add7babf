package metrics

import "github.com/prometheus/client_golang/prometheus"

var HttpRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests received",
	},
	[]string{"endpoint", "status", "method"},
)

var HttpRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"endpoint", "method"},
)

var HttpErrorsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_errors_total",
		Help: "Total number of failed HTTP requests (4xx/5xx)",
	},
	[]string{"endpoint", "status", "method"},
)

var HttpRateLimitRejectionsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "http_rate_limit_rejections_total",
		Help: "Total number of HTTP requests rejected due to rate limiting",
	},
)



var BookingsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bookings_total",
		Help: "Total number of booking operations by outcome",
	},
	[]string{"operation", "outcome"},
)

var SlotConflictsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "slot_conflicts_total",
		Help: "Total number of bookings rejected because the requested slots were full",
	},
)

var RemindersSentTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "reminders_sent_total",
		Help: "Total number of reminder messages dispatched per rule type",
	},
	[]string{"rule"},
)

var MessagesDispatchedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "messages_dispatched_total",
		Help: "Total number of outbound messages by kind and delivery outcome",
	},
	[]string{"kind", "status"},
)

var MessageRetriesTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "message_retries_total",
		Help: "Total number of outbound message retry attempts",
	},
)

var ScanRunsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "scan_runs_total",
		Help: "Total number of background scan runs by outcome",
	},
	[]string{"scan", "outcome"},
)

var ScanDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "scan_duration_seconds",
		Help:    "Duration of background scan runs in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"scan"},
)

var NoShowsMarkedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "no_shows_marked_total",
		Help: "Total number of appointments automatically marked as no_show",
	},
)

var AppointmentsArchivedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "appointments_archived_total",
		Help: "Total number of appointments archived by the daily scan",
	},
)


var KafkaPublishSuccessTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_publish_success_total",
		Help: "Total number of successful Kafka publishes",
	},
	[]string{"topic"},
)

var KafkaPublishFailureTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_publish_failure_total",
		Help: "Total number of failed Kafka publishes",
	},
	[]string{"topic"},
)

var KafkaSubscriberFailureTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_subscriber_failure_total",
		Help: "Total number of failed Kafka subscribes",
	},
	[]string{"topic"},
)



var ExternalAPISuccessTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "external_api_success_total",
		Help: "Total number of successful external API calls",
	},
	[]string{"provider", "service"},
)

var ExternalAPIFailureTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "external_api_failure_total",
		Help: "Total number of failed external API calls",
	},
	[]string{"provider", "service"},
)

var ExternalAPIDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "external_api_duration_seconds",
		Help:    "Duration of external API calls in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"provider", "service"},
)

func InitAPIMetrics() {
	prometheus.MustRegister(HttpRequestsTotal)
	prometheus.MustRegister(HttpRequestDuration)
	prometheus.MustRegister(HttpErrorsTotal)
	prometheus.MustRegister(HttpRateLimitRejectionsTotal)
	prometheus.MustRegister(BookingsTotal)
	prometheus.MustRegister(SlotConflictsTotal)
}

func InitSchedulerMetrics() {
	prometheus.MustRegister(ScanRunsTotal)
	prometheus.MustRegister(ScanDuration)
	prometheus.MustRegister(NoShowsMarkedTotal)
	prometheus.MustRegister(AppointmentsArchivedTotal)
	prometheus.MustRegister(RemindersSentTotal)
	prometheus.MustRegister(MessagesDispatchedTotal)
	prometheus.MustRegister(MessageRetriesTotal)
}

func InitSenderMetrics() {
	prometheus.MustRegister(ExternalAPISuccessTotal)
	prometheus.MustRegister(ExternalAPIFailureTotal)
	prometheus.MustRegister(ExternalAPIDuration)
}

func InitKafkaMetrics() {
	prometheus.MustRegister(KafkaPublishSuccessTotal)
	prometheus.MustRegister(KafkaPublishFailureTotal)
	prometheus.MustRegister(KafkaSubscriberFailureTotal)
}
