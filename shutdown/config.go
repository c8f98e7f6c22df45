package shutdown

import "time"

/* ========================================================================
 * Shutdown Config - 优雅关停配置
 * ======================================================================== */

// 钩子优先级，数值越小越先执行
const (
	// PriorityTraffic 停止接收新请求（HTTP 服务器）
	PriorityTraffic = 10
	// PriorityNormal 默认优先级
	PriorityNormal = 50
	// PriorityResources 释放外部连接（redis 等）
	PriorityResources = 90
)

// Config 优雅关停配置
type Config struct {
	// Timeout 关停总超时，超时后剩余钩子不再执行
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// HookTimeout 单个钩子超时，0 表示只受总超时约束
	HookTimeout time.Duration `yaml:"hook_timeout" mapstructure:"hook_timeout"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Timeout:     30 * time.Second,
		HookTimeout: 10 * time.Second,
	}
}

func (c *Config) withDefaults() *Config {
	out := DefaultConfig()
	if c == nil {
		return out
	}
	if c.Timeout > 0 {
		out.Timeout = c.Timeout
	}
	out.HookTimeout = c.HookTimeout
	return out
}
