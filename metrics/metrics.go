package metrics

import (
	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

/* ========================================================================
 * Prometheus Metrics - 可观测性指标
 * ========================================================================
 * 职责: 提供 Prometheus 指标注册和暴露
 * 指标: HTTP 请求、验证次数/耗时、规则失败次数
 * ======================================================================== */

var (
	// HTTPRequestDuration HTTP 请求延迟
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "app",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestTotal HTTP 请求总数
	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "app",
			Subsystem: "http",
			Name:      "request_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// ValidationPassTotal 验证次数（result: passed, failed）
	ValidationPassTotal = promauto.NewCounterVec(passTotalOpts, []string{"form", "result"})

	// ValidationPassDuration 单次验证耗时
	ValidationPassDuration = promauto.NewHistogramVec(passDurationOpts, []string{"form"})

	// ValidationRuleFailureTotal 规则失败次数
	ValidationRuleFailureTotal = promauto.NewCounterVec(ruleFailureOpts, []string{"form", "rule"})
)

var (
	passTotalOpts = prometheus.CounterOpts{
		Namespace: "app",
		Subsystem: "validation",
		Name:      "pass_total",
		Help:      "Total number of validation passes",
	}
	passDurationOpts = prometheus.HistogramOpts{
		Namespace: "app",
		Subsystem: "validation",
		Name:      "pass_duration_seconds",
		Help:      "Validation pass duration in seconds",
		Buckets:   []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .025, .05},
	}
	ruleFailureOpts = prometheus.CounterOpts{
		Namespace: "app",
		Subsystem: "validation",
		Name:      "rule_failure_total",
		Help:      "Total number of failed validation rules",
	}
)

// RegisterMetricsEndpoint 注册 /metrics 端点
func RegisterMetricsEndpoint(app *fiber.App) {
	// 使用 fasthttpadaptor 将 promhttp.Handler 适配到 Fiber
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	app.Get("/metrics", func(c fiber.Ctx) error {
		handler(c.RequestCtx())
		return nil
	})
}

// NewCounter 创建自定义 Counter
func NewCounter(namespace, subsystem, name, help string, labels []string) *prometheus.CounterVec {
	return promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

// NewGauge 创建自定义 Gauge
func NewGauge(namespace, subsystem, name, help string, labels []string) *prometheus.GaugeVec {
	return promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

// NewHistogram 创建自定义 Histogram
func NewHistogram(namespace, subsystem, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	if buckets == nil {
		buckets = prometheus.DefBuckets
	}
	return promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
			Buckets:   buckets,
		},
		labels,
	)
}
