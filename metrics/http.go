package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
)

/* ========================================================================
 * HTTP Metrics Middleware - HTTP 请求指标
 * ========================================================================
 * 标签: method, path, status
 * path 使用路由模板（/v1/forms/:form/validate），未匹配路由统一记为 unmatched，
 * 避免任意路径撑爆标签基数
 * ======================================================================== */

// UnmatchedPath 未匹配任何路由的请求使用的 path 标签
const UnmatchedPath = "unmatched"

// HTTPMiddlewareConfig HTTP 指标中间件配置
type HTTPMiddlewareConfig struct {
	// RequestTotal 为空时使用 HTTPRequestTotal
	RequestTotal *prometheus.CounterVec
	// RequestDuration 为空时使用 HTTPRequestDuration
	RequestDuration *prometheus.HistogramVec

	// Skipper 返回 true 时不记录
	Skipper func(fiber.Ctx) bool

	// RawPath 使用原始请求路径作为标签（仅在路径集合有限时开启）
	RawPath bool
}

// HTTPMetricsMiddleware 记录请求数与耗时
func HTTPMetricsMiddleware(cfg *HTTPMiddlewareConfig) fiber.Handler {
	var config HTTPMiddlewareConfig
	if cfg != nil {
		config = *cfg
	}
	if config.RequestTotal == nil {
		config.RequestTotal = HTTPRequestTotal
	}
	if config.RequestDuration == nil {
		config.RequestDuration = HTTPRequestDuration
	}

	return func(c fiber.Ctx) error {
		if config.Skipper != nil && config.Skipper(c) {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()

		labels := []string{c.Method(), pathLabel(c, config.RawPath), strconv.Itoa(c.Response().StatusCode())}
		config.RequestTotal.WithLabelValues(labels...).Inc()
		config.RequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		return err
	}
}

// pathLabel 路由模板优先；app 级中间件匹配到的 "/" 不算真实路由
func pathLabel(c fiber.Ctx, raw bool) string {
	if raw {
		return c.Path()
	}
	if route := c.Route(); route != nil && route.Path != "" && route.Path != "/" {
		return route.Path
	}
	if c.Path() == "/" {
		return "/"
	}
	return UnmatchedPath
}
