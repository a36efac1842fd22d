package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the bot's prometheus collectors. All methods are safe to
// call on a nil receiver so components can run without instrumentation.
type Metrics struct {
	remindersSent       prometheus.Counter
	usersBlocked        prometheus.Counter
	submissions         *prometheus.CounterVec
	deliveriesFailed    *prometheus.CounterVec
	jobDuration         *prometheus.HistogramVec
	jobFailures         *prometheus.CounterVec
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		remindersSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "challengebot_reminders_sent_total",
			Help: "Reminders emitted by reminder sweeps",
		}),
		usersBlocked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "challengebot_users_blocked_total",
			Help: "Users auto-blocked by reminder sweeps",
		}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "challengebot_submissions_total",
			Help: "Daily submissions by outcome",
		}, []string{"outcome"}),
		deliveriesFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "challengebot_delivery_failures_total",
			Help: "Outbound Telegram sends that failed",
		}, []string{"kind"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "challengebot_job_duration_seconds",
			Help:    "Duration of scheduled jobs",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
		jobFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "challengebot_job_failures_total",
			Help: "Scheduled job runs that returned an error",
		}, []string{"job"}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"path", "method", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
	}

	reg.MustRegister(
		m.remindersSent,
		m.usersBlocked,
		m.submissions,
		m.deliveriesFailed,
		m.jobDuration,
		m.jobFailures,
		m.httpRequestsTotal,
		m.httpRequestDuration,
	)
	return m
}

func (m *Metrics) ReminderSent() {
	if m == nil {
		return
	}
	m.remindersSent.Inc()
}

func (m *Metrics) UserBlocked() {
	if m == nil {
		return
	}
	m.usersBlocked.Inc()
}

// Submission counts a submission attempt; outcome is "accepted" or a rejection reason.
func (m *Metrics) Submission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) DeliveryFailed(kind string) {
	if m == nil {
		return
	}
	m.deliveriesFailed.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveJob(job string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.jobDuration.WithLabelValues(job).Observe(d.Seconds())
	if err != nil {
		m.jobFailures.WithLabelValues(job).Inc()
	}
}

func (m *Metrics) ObserveHTTP(path, method, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(path, method, status).Inc()
	m.httpRequestDuration.WithLabelValues(path, method).Observe(d.Seconds())
}
