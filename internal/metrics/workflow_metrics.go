package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WorkflowMetrics содержит метрики workflow резервирования остатков.
type WorkflowMetrics struct {
	// Счётчики операций с заказами
	ordersPlaced  prometheus.Counter
	ordersUpdated prometheus.Counter
	ordersDeleted prometheus.Counter

	// Провалы workflow по причинам: not_found, permission_denied, insufficient_stock
	workflowFailed *prometheus.CounterVec

	// Списанные единицы товара
	unitsReserved prometheus.Counter

	// Гистограмма времени размещения заказа
	placeDuration prometheus.Histogram
}

// NewWorkflowMetrics создаёт и регистрирует метрики workflow.
func NewWorkflowMetrics() *WorkflowMetrics {
	return newWorkflowMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newWorkflowMetricsWithRegisterer(registerer prometheus.Registerer) *WorkflowMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &WorkflowMetrics{
		ordersPlaced: registerCounter(registerer, prometheus.CounterOpts{
			Name: "crm_orders_placed_total",
			Help: "Total number of orders placed successfully",
		}),
		ordersUpdated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "crm_orders_updated_total",
			Help: "Total number of orders updated successfully",
		}),
		ordersDeleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "crm_orders_deleted_total",
			Help: "Total number of orders deleted",
		}),
		workflowFailed: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "crm_order_workflow_failed_total",
			Help: "Total number of failed order workflow calls by reason",
		}, []string{"reason"}),
		unitsReserved: registerCounter(registerer, prometheus.CounterOpts{
			Name: "crm_stock_units_reserved_total",
			Help: "Total number of product units reserved by the stock workflow",
		}),
		placeDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "crm_order_place_duration_seconds",
			Help:    "Duration of order placement in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderPlaced увеличивает счётчик размещённых заказов.
func (m *WorkflowMetrics) RecordOrderPlaced() {
	m.ordersPlaced.Inc()
}

// RecordOrderUpdated увеличивает счётчик обновлённых заказов.
func (m *WorkflowMetrics) RecordOrderUpdated() {
	m.ordersUpdated.Inc()
}

// RecordOrderDeleted увеличивает счётчик удалённых заказов.
func (m *WorkflowMetrics) RecordOrderDeleted() {
	m.ordersDeleted.Inc()
}

// RecordWorkflowFailed увеличивает счётчик провалов по причине.
func (m *WorkflowMetrics) RecordWorkflowFailed(reason string) {
	m.workflowFailed.WithLabelValues(reason).Inc()
}

// RecordUnitsReserved учитывает списанные единицы товара.
func (m *WorkflowMetrics) RecordUnitsReserved(qty int32) {
	m.unitsReserved.Add(float64(qty))
}

// RecordPlaceDuration записывает время размещения заказа.
func (m *WorkflowMetrics) RecordPlaceDuration(duration time.Duration) {
	m.placeDuration.Observe(duration.Seconds())
}
