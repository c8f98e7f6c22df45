package middleware

import (
	"crypto/subtle"
	"slices"
	"strings"

	"github.com/aisgo/ais-validate/logger"
	"github.com/aisgo/ais-validate/response"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

/* ========================================================================
 * API Key Authentication Middleware
 * ========================================================================
 * 职责: 验证调用方 API Key，识别出的 key_id 用于限流和日志
 * 支持两种方式:
 *   1. X-API-Key Header
 *   2. Authorization Bearer Token
 * 探针与指标路径（SkipPaths）不做认证
 * ======================================================================== */

const (
	HeaderAPIKey = "X-API-Key"

	localKeyID   = "key_id"
	bearerPrefix = "Bearer "
)

// APIKeyConfig API Key 配置
type APIKeyConfig struct {
	Enabled   bool              `yaml:"enabled" mapstructure:"enabled"`
	Keys      map[string]string `yaml:"keys" mapstructure:"keys"` // key_id -> api_key
	SkipPaths []string          `yaml:"skip_paths" mapstructure:"skip_paths"`
}

// APIKeyAuth API Key 认证中间件
type APIKeyAuth struct {
	config *APIKeyConfig
	log    *logger.Logger
}

// NewAPIKeyAuth 创建 API Key 认证中间件
func NewAPIKeyAuth(cfg *APIKeyConfig, log *logger.Logger) *APIKeyAuth {
	if cfg == nil {
		cfg = &APIKeyConfig{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &APIKeyAuth{
		config: cfg,
		log:    log.Named("apikey"),
	}
}

// Authenticate 返回 Fiber 中间件
func (a *APIKeyAuth) Authenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		if !a.config.Enabled || slices.Contains(a.config.SkipPaths, c.Path()) {
			return c.Next()
		}

		apiKey := c.Get(HeaderAPIKey)
		if apiKey == "" {
			if auth := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(auth, bearerPrefix) {
				apiKey = strings.TrimPrefix(auth, bearerPrefix)
			}
		}

		if apiKey == "" {
			a.log.Warn("Missing API Key",
				zap.String("ip", c.IP()),
				zap.String("path", c.Path()),
			)
			return response.Unauthorized(c, "missing api key")
		}

		keyID, valid := a.validateAPIKey(apiKey)
		if !valid {
			a.log.Warn("Invalid API Key",
				zap.String("ip", c.IP()),
				zap.String("path", c.Path()),
			)
			return response.Unauthorized(c, "invalid api key")
		}

		c.Locals(localKeyID, keyID)
		return c.Next()
	}
}

// validateAPIKey 验证 API Key
// 使用 constant-time 比较防止时序攻击
func (a *APIKeyAuth) validateAPIKey(apiKey string) (string, bool) {
	for keyID, storedKey := range a.config.Keys {
		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(storedKey)) == 1 {
			return keyID, true
		}
	}
	return "", false
}

// KeyIDFromContext 读取认证通过的 key_id
func KeyIDFromContext(c fiber.Ctx) (string, bool) {
	id, ok := c.Locals(localKeyID).(string)
	return id, ok && id != ""
}
