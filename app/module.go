package app

import (
	"context"

	"github.com/aisgo/ais-validate/logger"
	"github.com/aisgo/ais-validate/metrics"
	"github.com/aisgo/ais-validate/middleware"
	"github.com/aisgo/ais-validate/ruleset"
	"github.com/aisgo/ais-validate/shutdown"
	transporthttp "github.com/aisgo/ais-validate/transport/http"
	"github.com/aisgo/ais-validate/validator"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

/* ========================================================================
 * App Module - 服务依赖注入
 * ========================================================================
 * 职责: 由 *Config 装配 logger、表单目录、认证、限流、关停管理器与 HTTP 服务器
 * 提供: *logger.Logger, *ruleset.Catalog, *middleware.APIKeyAuth,
 *       *middleware.RateLimiter（仅启用时）, *shutdown.Manager, *fiber.App
 * ======================================================================== */

// Module 服务模块
// 配置文件只能引用已注册的扩展：ext 中没有的 depends 条件会让字段被跳过，
// 没有的 callback_ 回调永远通过。cmd/ais-validate 不注册任何扩展，
// 需要这两类规则时以库的方式嵌入并传入自己的 ruleset.Extensions
func Module(cfg *Config, ext ruleset.Extensions) fx.Option {
	options := []fx.Option{
		fx.Supply(cfg, ext),
		fx.Provide(
			func(c *Config) logger.Config { return c.Logger },
			func(c *Config) transporthttp.Config { return c.HTTP },
			func(c *Config) *shutdown.Config { return &c.Shutdown },
			logger.NewLogger,
			NewCatalog,
			NewAPIKeyAuth,
		),
		shutdown.Module,
		fx.Provide(transporthttp.NewHTTPServer),
		fx.Invoke(func(*fiber.App) {}),
	}
	if cfg.RateLimit.Enabled {
		options = append(options, fx.Provide(NewRateLimiter))
	}
	return fx.Options(options...)
}

// NewCatalog 构建表单目录，引擎共享服务 logger 与 prometheus 观察器
func NewCatalog(cfg *Config, ext ruleset.Extensions, log *logger.Logger) (*ruleset.Catalog, error) {
	catalog, err := ruleset.NewCatalog(cfg.Set, ext,
		validator.WithLogger(log),
		validator.WithObserver(metrics.NewObserver()),
	)
	if err != nil {
		return nil, err
	}
	log.Info("Rule set loaded", zap.Strings("forms", catalog.Names()))
	if conditionals, callbacks := catalog.Unbound(); len(conditionals)+len(callbacks) > 0 {
		log.Warn("Rule set references extensions that are not registered: fields depending on them are skipped, their callback rules always pass",
			zap.Strings("conditionals", conditionals),
			zap.Strings("callbacks", callbacks),
		)
	}
	return catalog, nil
}

// NewAPIKeyAuth 探针与指标路径不需要认证
func NewAPIKeyAuth(cfg *Config, log *logger.Logger) *middleware.APIKeyAuth {
	authCfg := cfg.APIKey
	authCfg.SkipPaths = append(authCfg.SkipPaths, transporthttp.ProbePaths()...)
	return middleware.NewAPIKeyAuth(&authCfg, log)
}

// NewRateLimiter 创建限流器，存储连接在关停最后阶段释放
func NewRateLimiter(cfg *Config, m *shutdown.Manager) (*middleware.RateLimiter, error) {
	limiter, err := middleware.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		return nil, err
	}
	m.RegisterHookWithPriority("rate-limit-store", func(context.Context) error {
		return limiter.Close()
	}, shutdown.PriorityResources)
	return limiter, nil
}
