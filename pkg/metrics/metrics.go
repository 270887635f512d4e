// Package metrics 提供基于Prometheus的指标收集
//
// 指标注册在包内独立的Registry上，/metrics端点通过Handler暴露。
//
//	┌─────────────────────────────┐
//	│  bookmarket                 │
//	│  ├─ HTTP中间件: 请求数/耗时  │
//	│  ├─ 结账/支付回调: 业务计数  │
//	│  └─ GET /metrics            │
//	└─────────────────────────────┘
//	              ↓
//	        Prometheus抓取
//
// 命名规范：Counter以_total结尾，Histogram以单位结尾（_seconds）。
// 标签只使用有限取值（method、route、result），不要用user_id、book_id。
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry 本服务的指标注册表
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var once sync.Once

var (
	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数，route使用gin的FullPath避免高基数
	HTTPRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "route"},
	)

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	// 业务指标

	// CheckoutSessionsTotal 结账会话创建次数
	// result: created | rejected | failed
	CheckoutSessionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_sessions_total",
			Help: "结账会话创建次数",
		},
		[]string{"result"},
	)

	// PaymentEventsTotal 支付回调事件
	// result: applied | duplicate | ignored | rejected | unknown_order
	PaymentEventsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_events_total",
			Help: "支付回调事件处理结果",
		},
		[]string{"type", "result"},
	)

	// StockOversellTotal 支付完成时库存不足、未能扣减的明细数
	StockOversellTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "stock_oversell_total",
			Help: "支付完成但库存不足的订单明细数",
		},
	)

	// ExternalCatalogRequests 外部书目检索
	// result: success | failure | rejected
	ExternalCatalogRequests = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "external_catalog_requests_total",
			Help: "外部书目检索请求数",
		},
		[]string{"result"},
	)

	// 熔断器指标

	// CircuitBreakerState 熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）
	CircuitBreakerState = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	// Saga指标

	// SagaExecutionsTotal Saga执行总数，result: success | failure
	SagaExecutionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saga_executions_total",
			Help: "Saga执行总数",
		},
		[]string{"saga", "result"},
	)

	// SagaCompensationsTotal Saga补偿执行总数
	SagaCompensationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saga_compensations_total",
			Help: "Saga补偿执行总数",
		},
		[]string{"saga", "step"},
	)

	// 消息队列指标

	// MessagesPublishedTotal 消息发布总数，result: success | failure
	MessagesPublishedTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"routing_key", "result"},
	)
)

// InitMetrics 注册Go运行时与进程指标，可重复调用
func InitMetrics() {
	once.Do(func() {
		Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	})
}

// Handler /metrics端点
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

// IncCounterVec 递增CounterVec（带标签）
func IncCounterVec(counter *prometheus.CounterVec, labels ...string) {
	counter.WithLabelValues(labels...).Inc()
}

// SetGaugeVec 设置GaugeVec值（带标签）
func SetGaugeVec(gauge *prometheus.GaugeVec, value float64, labels ...string) {
	gauge.WithLabelValues(labels...).Set(value)
}
