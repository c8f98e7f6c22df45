package app

import (
	"github.com/aisgo/ais-validate/conf"
	"github.com/aisgo/ais-validate/errors"
	"github.com/aisgo/ais-validate/logger"
	"github.com/aisgo/ais-validate/middleware"
	"github.com/aisgo/ais-validate/ruleset"
	"github.com/aisgo/ais-validate/shutdown"
	transporthttp "github.com/aisgo/ais-validate/transport/http"
)

/* ========================================================================
 * App Config - 服务配置
 * ========================================================================
 * 职责: 聚合各组件配置，表单规则集与服务配置放在同一个文件中
 * 配置示例 (YAML):
 *   logger:
 *     level: info
 *   http:
 *     port: ${HTTP_PORT:-8080}
 *   api_key:
 *     enabled: true
 *     keys:
 *       frontend: ${FRONTEND_API_KEY}
 *   rate_limit:
 *     enabled: true
 *     rate: 100-S
 *   forms:
 *     signup:
 *       fields: [...]
 * ======================================================================== */

// Config 服务配置
type Config struct {
	Logger    logger.Config              `yaml:"logger" mapstructure:"logger"`
	HTTP      transporthttp.Config       `yaml:"http" mapstructure:"http"`
	Shutdown  shutdown.Config            `yaml:"shutdown" mapstructure:"shutdown"`
	APIKey    middleware.APIKeyConfig    `yaml:"api_key" mapstructure:"api_key"`
	RateLimit middleware.RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`

	ruleset.Set `yaml:",inline" mapstructure:",squash"`
}

// Load 加载服务配置并校验
func Load(loader conf.Loader) (*Config, error) {
	var cfg Config
	if err := loader.Load(&cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidArgument, "load config", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验日志与规则集配置
func (c *Config) Validate() error {
	if err := logger.ValidateConfig(c.Logger); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidArgument, "invalid logger config", err)
	}
	return c.Set.Validate()
}

// NewLoader 创建服务配置加载器，与规则集使用相同的解码钩子
func NewLoader(configPath, configName string, opts ...conf.Option) conf.Loader {
	return ruleset.NewLoader(configPath, configName, "yaml", opts...)
}
