package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Исходы чтения этикетки
const (
	OutcomeMatched    = "matched"
	OutcomeUnmatched  = "unmatched"
	OutcomeUnreadable = "unreadable"
	OutcomeError      = "error"
)

// Metrics - метрики приема посылок. Все методы безопасны для nil.
type Metrics struct {
	LabelReads         *prometheus.CounterVec
	MatchScore         prometheus.Histogram
	LabelReadLatency   prometheus.Histogram
	PackagesRegistered prometheus.Counter
	Pickups            prometheus.Counter
	MessagesSent       *prometheus.CounterVec
	HTTPRequests       *prometheus.CounterVec
}

// New регистрирует метрики в reg. В приложении это prometheus.DefaultRegisterer,
// в тестах - отдельный prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LabelReads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "encomendas_label_reads_total",
			Help: "Label reads by outcome",
		}, []string{"outcome"}),

		MatchScore: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "encomendas_match_score",
			Help:    "Best resident score per label read",
			Buckets: []float64{0, 20, 30, 35, 40, 50, 60, 70, 80, 105, 125},
		}),

		LabelReadLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "encomendas_label_read_duration_seconds",
			Help:    "Duration of the AI label read",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}),

		PackagesRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "encomendas_packages_registered_total",
			Help: "Packages registered at the front desk",
		}),

		Pickups: factory.NewCounter(prometheus.CounterOpts{
			Name: "encomendas_pickups_total",
			Help: "Packages picked up",
		}),

		MessagesSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "encomendas_whatsapp_messages_total",
			Help: "WhatsApp messages by kind and result",
		}, []string{"kind", "result"}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "encomendas_http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) IncLabelRead(outcome string) {
	if m != nil {
		m.LabelReads.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) ObserveMatchScore(score int) {
	if m != nil {
		m.MatchScore.Observe(float64(score))
	}
}

func (m *Metrics) ObserveLabelReadLatency(d time.Duration) {
	if m != nil {
		m.LabelReadLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) IncPackagesRegistered() {
	if m != nil {
		m.PackagesRegistered.Inc()
	}
}

func (m *Metrics) IncPickups() {
	if m != nil {
		m.Pickups.Inc()
	}
}

// IncMessage records a WhatsApp send; kind is "arrival" or "pickup".
func (m *Metrics) IncMessage(kind string, err error) {
	if m == nil {
		return
	}
	result := "sent"
	if err != nil {
		result = "failed"
	}
	m.MessagesSent.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) IncHTTPRequest(method, route string, status int) {
	if m != nil {
		m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	}
}
