// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "tablewise"

// Metrics holds the service collectors.
type Metrics struct {
	OrdersPlaced     prometheus.Counter
	OrdersConfirmed  prometheus.Counter
	OrdersReturned   prometheus.Counter
	PaymentsRecorded prometheus.Counter
	TablesClosed     prometheus.Counter
	Revenue          prometheus.Counter
	StorageErrors    *prometheus.CounterVec
	RPCDuration      *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OrdersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_lines_placed_total",
			Help:      "Order lines added to pending lists.",
		}),
		OrdersConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_lines_confirmed_total",
			Help:      "Pending order lines confirmed into a bill.",
		}),
		OrdersReturned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_lines_unconfirmed_total",
			Help:      "Confirmed order lines moved back to pending.",
		}),
		PaymentsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "partial_payments_applied_total",
			Help:      "Partial payments matched to a confirmed line.",
		}),
		TablesClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tables_closed_total",
			Help:      "Tables closed and archived.",
		}),
		Revenue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archived_revenue_total",
			Help:      "Sum of archived bill totals.",
		}),
		StorageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_errors_total",
			Help:      "Failed collection writes by operation.",
		}, []string{"operation"}),
		RPCDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency by procedure and result code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure", "code"}),
	}

	reg.MustRegister(
		m.OrdersPlaced,
		m.OrdersConfirmed,
		m.OrdersReturned,
		m.PaymentsRecorded,
		m.TablesClosed,
		m.Revenue,
		m.StorageErrors,
		m.RPCDuration,
	)

	return m
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
