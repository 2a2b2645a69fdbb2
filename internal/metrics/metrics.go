package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "heroquiz"

// Metrics holds the service's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	QuizzesGenerated *prometheus.CounterVec
	AIDecodeShapes   *prometheus.CounterVec
	Attempts         *prometheus.CounterVec
	PointsAwarded    prometheus.Counter
	Notifications    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		QuizzesGenerated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quizzes_generated_total",
			Help:      "Quizzes generated, by source.",
		}, []string{"source"}),
		AIDecodeShapes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ai_decode_shape_total",
			Help:      "Decoded AI quiz responses, by how much repair they needed.",
		}, []string{"shape"}),
		Attempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attempts_total",
			Help:      "Recorded quiz attempts, by outcome.",
		}, []string{"outcome"}),
		PointsAwarded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_awarded_total",
			Help:      "Points added to user totals.",
		}),
		Notifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Quiz-result notification deliveries, by result.",
		}, []string{"result"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}
}

func (m *Metrics) QuizGenerated(source string) {
	if m == nil {
		return
	}
	m.QuizzesGenerated.WithLabelValues(source).Inc()
}

func (m *Metrics) AIDecoded(shape string) {
	if m == nil {
		return
	}
	m.AIDecodeShapes.WithLabelValues(shape).Inc()
}

// AttemptRecorded counts one attempt as scored or practice.
func (m *Metrics) AttemptRecorded(practice bool, points int) {
	if m == nil {
		return
	}
	outcome := "scored"
	if practice {
		outcome = "practice"
	}
	m.Attempts.WithLabelValues(outcome).Inc()
	if points > 0 {
		m.PointsAwarded.Add(float64(points))
	}
}

func (m *Metrics) NotificationResult(result string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveRequest(route, method string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(seconds)
}
