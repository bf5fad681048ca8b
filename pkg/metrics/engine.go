package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics records lifecycle and billing engine activity.
type EngineMetrics struct {
	statusAdvances *prometheus.CounterVec
	repacks        *prometheus.CounterVec
	draftsCreated  prometheus.Counter
	invoicesSent   prometheus.Counter
}

// NewEngineMetrics registers the engine metrics on the provided registerer.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		return &EngineMetrics{}
	}
	statusAdvances := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lifecycle_status_advances_total",
		Help: "Rows moved forward by the status updater, by entity.",
	}, []string{"entity"})
	repacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "group_repacks_total",
		Help: "Dense renumber passes executed, by sequence kind.",
	}, []string{"kind"})
	draftsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "billing_drafts_created_total",
		Help: "External billing drafts created.",
	})
	invoicesSent := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "billing_invoices_sent_total",
		Help: "Invoices published to customers.",
	})
	reg.MustRegister(statusAdvances, repacks, draftsCreated, invoicesSent)
	return &EngineMetrics{
		statusAdvances: statusAdvances,
		repacks:        repacks,
		draftsCreated:  draftsCreated,
		invoicesSent:   invoicesSent,
	}
}

// AddStatusAdvances records rows changed by a forward advance for an entity.
func (e *EngineMetrics) AddStatusAdvances(entity string, count int) {
	if e == nil || e.statusAdvances == nil || count <= 0 {
		return
	}
	e.statusAdvances.WithLabelValues(normalizeLabel(entity)).Add(float64(count))
}

// IncRepack counts one renumber pass for the given sequence kind.
func (e *EngineMetrics) IncRepack(kind string) {
	if e == nil || e.repacks == nil {
		return
	}
	e.repacks.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncDraftCreated counts one external draft creation.
func (e *EngineMetrics) IncDraftCreated() {
	if e == nil || e.draftsCreated == nil {
		return
	}
	e.draftsCreated.Inc()
}

// IncInvoiceSent counts one successful invoice send.
func (e *EngineMetrics) IncInvoiceSent() {
	if e == nil || e.invoicesSent == nil {
		return
	}
	e.invoicesSent.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
