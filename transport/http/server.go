package http

import (
	"context"
	"fmt"
	"net"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/aisgo/ais-validate/logger"
	"github.com/aisgo/ais-validate/metrics"
	"github.com/aisgo/ais-validate/middleware"
	"github.com/aisgo/ais-validate/ruleset"
	"github.com/aisgo/ais-validate/shutdown"

	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

/* ========================================================================
 * HTTP Server - Fiber v3 HTTP 服务器
 * ========================================================================
 * 职责: 对外提供表单验证 API、健康检查、指标暴露
 * 技术: Fiber v3
 * 中间件顺序: recover -> metrics -> api key -> rate limit（仅 /v1）
 * ======================================================================== */

// Config HTTP 服务器配置
type Config struct {
	Port         int           `yaml:"port" mapstructure:"port"`
	Host         string        `yaml:"host" mapstructure:"host"`
	AppName      string        `yaml:"app_name" mapstructure:"app_name"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`

	// EnableRecover 是否启用 Panic 恢复中间件，默认 true（生产环境推荐）
	// 设为 false 可在开发/测试环境直接暴露 panic，便于问题定位
	EnableRecover *bool `yaml:"enable_recover" mapstructure:"enable_recover"`

	// Listen 嵌套 ListenConfig 的可序列化配置项
	Listen ListenOptions `yaml:"listen" mapstructure:"listen"`
}

// ListenOptions 包含 Fiber ListenConfig 中可以通过 YAML 配置的字段
// 对于更高级的配置（如 TLSConfigFunc、BeforeServeFunc 等函数类型），
// 请使用 ServerParams 中的 ListenConfigCustomizer
type ListenOptions struct {
	// 是否启用 Prefork 模式（多进程），默认 false
	EnablePrefork bool `yaml:"enable_prefork" mapstructure:"enable_prefork"`

	// 是否禁用启动消息，默认 false
	DisableStartupMessage bool `yaml:"disable_startup_message" mapstructure:"disable_startup_message"`

	// 是否打印所有路由，默认 false
	EnablePrintRoutes bool `yaml:"enable_print_routes" mapstructure:"enable_print_routes"`

	// 监听网络类型（tcp, tcp4, tcp6, unix），默认 tcp4
	// 注意：使用 Prefork 时只能选择 tcp4 或 tcp6
	ListenerNetwork string `yaml:"listener_network" mapstructure:"listener_network"`

	// TLS 证书文件路径
	CertFile string `yaml:"cert_file" mapstructure:"cert_file"`

	// TLS 证书私钥文件路径
	CertKeyFile string `yaml:"cert_key_file" mapstructure:"cert_key_file"`

	// mTLS 客户端证书文件路径
	CertClientFile string `yaml:"cert_client_file" mapstructure:"cert_client_file"`

	// 优雅关闭超时时间，默认 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`

	// Unix Socket 文件权限模式，默认 0770
	UnixSocketFileMode uint32 `yaml:"unix_socket_file_mode" mapstructure:"unix_socket_file_mode"`

	// TLS 最低版本，默认 TLS 1.2
	// 可选值: 771 (TLS 1.2), 772 (TLS 1.3)
	TLSMinVersion uint16 `yaml:"tls_min_version" mapstructure:"tls_min_version"`
}

// ListenConfigCustomizer 自定义 ListenConfig 的函数类型
// 用于配置那些无法通过 YAML 序列化的高级选项（如回调函数、context 等）
type ListenConfigCustomizer func(*fiber.ListenConfig)

// AppConfigCustomizer 自定义 Fiber Config
// 用于配置 Fiber ErrorHandler 或其他高级选项
type AppConfigCustomizer func(*fiber.Config)

// ServerParams HTTP 服务器依赖
type ServerParams struct {
	fx.In
	Lc      fx.Lifecycle
	Config  Config
	Logger  *logger.Logger
	Catalog *ruleset.Catalog

	// 可选组件：未提供时对应中间件不启用
	Auth     *middleware.APIKeyAuth  `optional:"true"`
	Limiter  *middleware.RateLimiter `optional:"true"`
	Shutdown *shutdown.Manager       `optional:"true"`

	// ErrorHandler 可选的 Fiber ErrorHandler
	ErrorHandler fiber.ErrorHandler `optional:"true"`

	// ListenConfigCustomizer 可选的 ListenConfig 自定义函数
	// 使用此函数可以设置更高级的配置，如：
	//   - GracefulContext: 优雅关闭的 context
	//   - TLSConfigFunc: 自定义 TLS 配置函数
	//   - ListenerAddrFunc: 监听地址回调
	//   - BeforeServeFunc: 服务启动前的回调
	//   - AutoCertManager: ACME 自动证书管理器
	ListenConfigCustomizer ListenConfigCustomizer `optional:"true"`

	// AppConfigCustomizer 可选的 Fiber Config 自定义函数
	AppConfigCustomizer AppConfigCustomizer `optional:"true"`
}

// NewHTTPServer 创建 HTTP 服务器并注册生命周期
func NewHTTPServer(p ServerParams) *fiber.App {
	// 应用默认值
	readTimeout := p.Config.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 30 * time.Second
	}
	writeTimeout := p.Config.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 30 * time.Second
	}
	idleTimeout := p.Config.IdleTimeout
	if idleTimeout <= 0 {
		idleTimeout = 120 * time.Second
	}
	appName := p.Config.AppName
	if appName == "" {
		appName = "ais-validate"
	}

	appConfig := fiber.Config{
		AppName:      appName,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	if p.AppConfigCustomizer != nil {
		p.AppConfigCustomizer(&appConfig)
	}
	if p.ErrorHandler != nil {
		appConfig.ErrorHandler = p.ErrorHandler
	} else if appConfig.ErrorHandler == nil {
		appConfig.ErrorHandler = middleware.NewErrorHandler(p.Logger)
	}

	app := fiber.New(appConfig)

	// 默认启用 Recover 中间件（生产环境必备，防止 panic 导致服务崩溃）
	// 可通过配置 enable_recover: false 在测试环境禁用，便于问题暴露
	enableRecover := true
	if p.Config.EnableRecover != nil {
		enableRecover = *p.Config.EnableRecover
	}

	if enableRecover {
		app.Use(recoverer.New(recoverer.Config{
			EnableStackTrace: true,
			StackTraceHandler: func(c fiber.Ctx, e any) {
				p.Logger.Error("Panic recovered",
					zap.Any("error", e),
					zap.String("path", c.Path()),
					zap.String("method", c.Method()),
					zap.String("ip", c.IP()),
				)
			},
		}))
	}

	app.Use(metrics.HTTPMetricsMiddleware(&metrics.HTTPMiddlewareConfig{
		Skipper: func(c fiber.Ctx) bool { return c.Path() == metricsPath },
	}))
	if p.Auth != nil {
		app.Use(p.Auth.Authenticate())
	}

	registerHealthEndpoints(app, p.Catalog)
	metrics.RegisterMetricsEndpoint(app)

	var limiter fiber.Handler
	if p.Limiter != nil {
		limiter = p.Limiter.Middleware()
	}
	NewValidationHandler(p.Catalog, p.Logger).Register(app, limiter)

	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			listenConfig := buildListenConfig(p.Config.Listen)
			if p.ListenConfigCustomizer != nil {
				p.ListenConfigCustomizer(&listenConfig)
			}
			addr := listenAddr(p.Config, listenConfig.ListenerNetwork)

			// 使用 Fiber 的 ListenConfig 创建 listener
			// 注意：Fiber v3 的 Listen 方法内部会创建 listener，我们需要使用 Listener 方法
			listener, err := createListener(addr, listenConfig)
			if err != nil {
				p.Logger.Error("Failed to create HTTP listener", zap.Error(err), zap.String("addr", addr))
				return fmt.Errorf("failed to bind to %s: %w", addr, err)
			}

			p.Logger.Info("HTTP Server listener created successfully", zap.String("addr", addr))

			// 创建 ready channel 用于确认服务器启动
			readyChan := make(chan struct{})
			errChan := make(chan error, 1)

			go func() {
				// 通知已准备就绪（listener 已创建）
				close(readyChan)

				p.Logger.Info("Starting HTTP Server", zap.String("addr", addr))
				if err := app.Listener(listener, listenConfig); err != nil {
					p.Logger.Error("HTTP Server failed", zap.Error(err))
					errChan <- err
				}
			}()

			// 等待 ready 信号或错误
			select {
			case <-readyChan:
				// 服务器已准备就绪（listener 已创建并绑定端口）
				return nil
			case err := <-errChan:
				// 服务器启动失败
				return err
			case <-ctx.Done():
				// 上下文被取消
				return ctx.Err()
			}
		},
		OnStop: func(ctx context.Context) error {
			// 由关停管理器统一按优先级关闭
			if p.Shutdown != nil {
				return nil
			}
			p.Logger.Info("Stopping HTTP Server")
			return app.ShutdownWithContext(ctx)
		},
	})

	if p.Shutdown != nil {
		p.Shutdown.RegisterHookWithPriority("http-server", func(ctx context.Context) error {
			p.Logger.Info("Stopping HTTP Server")
			return app.ShutdownWithContext(ctx)
		}, shutdown.PriorityTraffic)
	}

	return app
}

// listenAddr unix 网络下 Host 为 socket 文件路径
func listenAddr(cfg Config, network string) string {
	if network == networkUnix {
		return cfg.Host
	}
	return net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
}

// buildListenConfig 根据 ListenOptions 构建 Fiber ListenConfig，并应用默认值
func buildListenConfig(opts ListenOptions) fiber.ListenConfig {
	config := fiber.ListenConfig{
		EnablePrefork:         opts.EnablePrefork,
		DisableStartupMessage: opts.DisableStartupMessage,
		EnablePrintRoutes:     opts.EnablePrintRoutes,
		CertFile:              opts.CertFile,
		CertKeyFile:           opts.CertKeyFile,
		CertClientFile:        opts.CertClientFile,
	}

	// 应用默认值
	if opts.ListenerNetwork != "" {
		config.ListenerNetwork = opts.ListenerNetwork
	} else {
		config.ListenerNetwork = "tcp4" // 默认 tcp4
	}

	if opts.ShutdownTimeout > 0 {
		config.ShutdownTimeout = opts.ShutdownTimeout
	}
	// 注意：Fiber 默认的 ShutdownTimeout 是 10s，这里不设置则使用 Fiber 的默认值

	if opts.UnixSocketFileMode > 0 {
		config.UnixSocketFileMode = os.FileMode(opts.UnixSocketFileMode)
	}
	// 注意：Fiber 默认的 UnixSocketFileMode 是 0770

	if opts.TLSMinVersion > 0 {
		config.TLSMinVersion = opts.TLSMinVersion
	}
	// 注意：Fiber 默认的 TLSMinVersion 是 tls.VersionTLS12

	return config
}

/* ========================================================================
 * Health Check Endpoints
 * ========================================================================
 * /healthz - 存活探针：进程能响应即返回 200
 * /readyz  - 就绪探针：至少加载了一个表单才接收流量
 * ======================================================================== */

const (
	healthzPath = "/healthz"
	readyzPath  = "/readyz"
	metricsPath = "/metrics"
)

// ProbePaths 探针与指标路径，通常不需要认证
func ProbePaths() []string {
	return []string{healthzPath, readyzPath, metricsPath}
}

func registerHealthEndpoints(app *fiber.App, catalog *ruleset.Catalog) {
	app.Get(healthzPath, func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	app.Get(readyzPath, func(c fiber.Ctx) error {
		forms := 0
		if catalog != nil {
			forms = catalog.Len()
		}

		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		checks := map[string]string{
			"forms":           strconv.Itoa(forms),
			"memory_alloc_mb": fmt.Sprintf("%.2f", float64(m.Alloc)/1024/1024),
			"goroutines":      strconv.Itoa(runtime.NumGoroutine()),
		}

		status := "ok"
		statusCode := fiber.StatusOK
		if forms == 0 {
			status = "unready"
			statusCode = fiber.StatusServiceUnavailable
		}

		return c.Status(statusCode).JSON(fiber.Map{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
			"checks": checks,
		})
	})
}
