package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aisgo/ais-validate/response"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
)

/* ========================================================================
 * Rate Limit Middleware - 限流中间件
 * ========================================================================
 * 职责: 按调用方限制验证请求频率
 * 存储: memory（单实例）或 redis（多实例共享计数）
 * 限流键: 认证通过的 key_id，否则为客户端 IP
 * ======================================================================== */

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"

	defaultRate        = "1000-S"
	defaultStorePrefix = "ais_validate_limiter"
)

// RedisConfig redis 连接配置
type RedisConfig struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Enabled bool        `yaml:"enabled" mapstructure:"enabled"`
	Rate    string      `yaml:"rate" mapstructure:"rate"`   // limiter 格式: 100-S, 1000-M, 10000-H
	Store   string      `yaml:"store" mapstructure:"store"` // memory, redis
	Prefix  string      `yaml:"prefix" mapstructure:"prefix"`
	Redis   RedisConfig `yaml:"redis" mapstructure:"redis"`
}

// RateLimitKeyFunc returns an identifier used for rate limiting.
type RateLimitKeyFunc func(fiber.Ctx) string

// RateLimiter 限流器及其底层连接
type RateLimiter struct {
	limiter *limiter.Limiter
	client  *redis.Client
	keyFunc RateLimitKeyFunc
}

// NewRateLimiter 按配置创建限流器
func NewRateLimiter(cfg RateLimitConfig) (*RateLimiter, error) {
	formatted := cfg.Rate
	if formatted == "" {
		formatted = defaultRate
	}
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("invalid rate %q: %w", formatted, err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = defaultStorePrefix
	}

	rl := &RateLimiter{}
	var store limiter.Store
	switch strings.ToLower(cfg.Store) {
	case "", StoreMemory:
		store = memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: prefix})
	case StoreRedis:
		rl.client = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store, err = redisstore.NewStoreWithOptions(rl.client, limiter.StoreOptions{Prefix: prefix})
		if err != nil {
			_ = rl.client.Close()
			return nil, fmt.Errorf("create redis limiter store: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown rate limit store %q: must be %q or %q", cfg.Store, StoreMemory, StoreRedis)
	}

	rl.limiter = limiter.New(store, rate)
	return rl, nil
}

// WithKeyFunc 自定义限流键
func (r *RateLimiter) WithKeyFunc(fn RateLimitKeyFunc) *RateLimiter {
	r.keyFunc = fn
	return r
}

// Close 关闭 redis 连接
func (r *RateLimiter) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

// Middleware applies request rate limiting.
func (r *RateLimiter) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		ctx, err := r.limiter.Get(c.Context(), r.key(c))
		if err != nil {
			return response.ErrorWithCode(c, fiber.StatusInternalServerError, fmt.Errorf("rate limit check failed: %w", err))
		}

		c.Set("X-RateLimit-Limit", strconv.FormatInt(ctx.Limit, 10))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(ctx.Remaining, 10))

		if ctx.Reached {
			return response.TooManyRequests(c, "too many requests")
		}
		return c.Next()
	}
}

func (r *RateLimiter) key(c fiber.Ctx) string {
	if r.keyFunc != nil {
		if key := strings.TrimSpace(r.keyFunc(c)); key != "" {
			return key
		}
	}
	if id, ok := KeyIDFromContext(c); ok {
		return "key:" + id
	}
	return "ip:" + c.IP()
}
