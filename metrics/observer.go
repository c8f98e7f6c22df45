package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultPassed = "passed"
	resultFailed = "failed"
)

// Observer 将验证过程记录为 Prometheus 指标，实现 validator.Observer
type Observer struct {
	passTotal    *prometheus.CounterVec
	passDuration *prometheus.HistogramVec
	ruleFailures *prometheus.CounterVec
}

// NewObserver 使用默认注册表中的验证指标
func NewObserver() *Observer {
	return &Observer{
		passTotal:    ValidationPassTotal,
		passDuration: ValidationPassDuration,
		ruleFailures: ValidationRuleFailureTotal,
	}
}

// NewObserverWithRegisterer 在指定注册表中创建独立的验证指标
func NewObserverWithRegisterer(reg prometheus.Registerer) *Observer {
	factory := promauto.With(reg)
	return &Observer{
		passTotal:    factory.NewCounterVec(passTotalOpts, []string{"form", "result"}),
		passDuration: factory.NewHistogramVec(passDurationOpts, []string{"form"}),
		ruleFailures: factory.NewCounterVec(ruleFailureOpts, []string{"form", "rule"}),
	}
}

// ObservePass 记录一次验证
func (o *Observer) ObservePass(form string, passed bool, _ int, duration time.Duration) {
	result := resultFailed
	if passed {
		result = resultPassed
	}
	o.passTotal.WithLabelValues(form, result).Inc()
	o.passDuration.WithLabelValues(form).Observe(duration.Seconds())
}

// ObserveFailure 记录一次规则失败
func (o *Observer) ObserveFailure(form, rule string) {
	o.ruleFailures.WithLabelValues(form, rule).Inc()
}
