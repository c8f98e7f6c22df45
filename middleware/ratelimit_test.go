package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v3"
)

func hit(t *testing.T, app *fiber.App) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil), fiber.TestConfig{Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	return resp.StatusCode
}

func limitedApp(t *testing.T, rl *RateLimiter) *fiber.App {
	t.Helper()
	app := fiber.New()
	app.Use(rl.Middleware())
	app.Get("/ping", func(c fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestRateLimiterMemory(t *testing.T) {
	rl, err := NewRateLimiter(RateLimitConfig{Rate: "2-M"})
	if err != nil {
		t.Fatalf("new rate limiter: %v", err)
	}
	defer rl.Close()

	app := limitedApp(t, rl)
	for i := 0; i < 2; i++ {
		if got := hit(t, app); got != fiber.StatusOK {
			t.Fatalf("request %d: unexpected status %d", i, got)
		}
	}
	if got := hit(t, app); got != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", got)
	}
}

func TestRateLimiterRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	rl, err := NewRateLimiter(RateLimitConfig{
		Rate:  "1-M",
		Store: StoreRedis,
		Redis: RedisConfig{Addr: mr.Addr()},
	})
	if err != nil {
		t.Fatalf("new rate limiter: %v", err)
	}
	defer rl.Close()

	app := limitedApp(t, rl)
	if got := hit(t, app); got != fiber.StatusOK {
		t.Fatalf("unexpected status %d", got)
	}
	if got := hit(t, app); got != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", got)
	}
	if len(mr.Keys()) == 0 {
		t.Fatalf("expected limiter keys in redis")
	}
}

func TestRateLimiterKeyFunc(t *testing.T) {
	rl, err := NewRateLimiter(RateLimitConfig{Rate: "1-M"})
	if err != nil {
		t.Fatalf("new rate limiter: %v", err)
	}
	calls := 0
	rl.WithKeyFunc(func(fiber.Ctx) string {
		calls++
		if calls == 1 {
			return "first"
		}
		return "second"
	})

	app := limitedApp(t, rl)
	if hit(t, app) != fiber.StatusOK || hit(t, app) != fiber.StatusOK {
		t.Fatalf("distinct keys must be limited separately")
	}
}

func TestNewRateLimiterInvalidConfig(t *testing.T) {
	if _, err := NewRateLimiter(RateLimitConfig{Rate: "lots"}); err == nil {
		t.Fatalf("expected invalid rate error")
	}
	if _, err := NewRateLimiter(RateLimitConfig{Store: "etcd"}); err == nil {
		t.Fatalf("expected unknown store error")
	}
}
