package app

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "agro"

type Metrics struct {
	Txs               *prometheus.CounterVec
	ExecutedProposals prometheus.Counter
	ComplianceChecks  *prometheus.CounterVec
	Height            prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Txs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "txs_total",
			Help:      "Delivered transactions by type and result code.",
		}, []string{"type", "code"}),
		ExecutedProposals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "proposals_executed_total",
			Help:      "Rule proposals executed.",
		}),
		ComplianceChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "compliance_checks_total",
			Help:      "Compliance scores computed, by outcome.",
		}, []string{"compliant"}),
		Height: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "height",
			Help:      "Last committed block height.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Txs, m.ExecutedProposals, m.ComplianceChecks, m.Height)
	}
	return m
}

func (m *Metrics) observeTx(txType string, code uint32) {
	m.Txs.WithLabelValues(txType, strconv.FormatUint(uint64(code), 10)).Inc()
}

func (m *Metrics) observeCompliance(compliant bool) {
	m.ComplianceChecks.WithLabelValues(strconv.FormatBool(compliant)).Inc()
}
