package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aisgo/ais-validate/errors"
	"github.com/aisgo/ais-validate/logger"
	"github.com/aisgo/ais-validate/middleware"
	"github.com/aisgo/ais-validate/ruleset"
	"github.com/aisgo/ais-validate/shutdown"
	"github.com/aisgo/ais-validate/validator"
)

const testConfig = `
logger:
  level: debug
  format: console
http:
  port: ${TEST_HTTP_PORT:-9090}
  read_timeout: 5s
shutdown:
  timeout: 15s
api_key:
  enabled: true
  keys:
    frontend: secret
rate_limit:
  enabled: true
  rate: 10-S
forms:
  signup:
    fields:
      - name: email
        rules: required|valid_email
      - names: phone, mobile
        rules: numeric
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestLoad(t *testing.T) {
	cfg, err := Load(NewLoader(writeConfig(t, testConfig), "config"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Logger.Level != "debug" || cfg.HTTP.Port != 9090 || cfg.HTTP.ReadTimeout != 5*time.Second {
		t.Fatalf("unexpected service config: %+v %+v", cfg.Logger, cfg.HTTP)
	}
	if cfg.Shutdown.Timeout != 15*time.Second {
		t.Fatalf("unexpected shutdown timeout: %v", cfg.Shutdown.Timeout)
	}
	if !cfg.APIKey.Enabled || cfg.APIKey.Keys["frontend"] != "secret" {
		t.Fatalf("unexpected api key config: %+v", cfg.APIKey)
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.Rate != "10-S" {
		t.Fatalf("unexpected rate limit config: %+v", cfg.RateLimit)
	}

	form, ok := cfg.Form("signup")
	if !ok {
		t.Fatalf("expected signup form")
	}
	if got := form.FieldNames(); len(got) != 3 || got[1] != "phone" || got[2] != "mobile" {
		t.Fatalf("unexpected fields: %v", got)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	_, err := Load(NewLoader(writeConfig(t, "logger:\n  format: xml\n"), "config"))
	if errors.Code(err) != errors.ErrCodeInvalidArgument {
		t.Fatalf("expected invalid argument, got %v", err)
	}

	_, err = Load(NewLoader(writeConfig(t, "forms:\n  signup:\n    messages:\n      required: x\n"), "config"))
	if errors.Code(err) != errors.ErrCodeRuleSetInvalid {
		t.Fatalf("expected invalid rule set, got %v", err)
	}
}

func TestNewCatalog(t *testing.T) {
	cfg, err := Load(NewLoader(writeConfig(t, testConfig), "config"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	catalog, err := NewCatalog(cfg, ruleset.Extensions{}, logger.NewNop())
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	engine, err := catalog.Engine("signup", validator.MapSource{"email": "nope", "phone": "12a"}, nil)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	if engine.ValidateForm() {
		t.Fatalf("expected validation to fail")
	}
	if len(engine.Errors()) != 2 {
		t.Fatalf("unexpected errors: %v", engine.Errors())
	}
}

func TestNewAPIKeyAuthSkipsProbes(t *testing.T) {
	cfg := &Config{APIKey: middleware.APIKeyConfig{Enabled: true, SkipPaths: []string{"/docs"}}}
	if NewAPIKeyAuth(cfg, nil) == nil {
		t.Fatalf("expected auth")
	}
	if len(cfg.APIKey.SkipPaths) != 1 {
		t.Fatalf("config skip paths must not be modified: %v", cfg.APIKey.SkipPaths)
	}
}

func TestNewRateLimiterRegistersClose(t *testing.T) {
	m := shutdown.NewManager(shutdown.ManagerParams{})
	limiter, err := NewRateLimiter(&Config{RateLimit: middleware.RateLimitConfig{Enabled: true}}, m)
	if err != nil || limiter == nil {
		t.Fatalf("new rate limiter: %v", err)
	}
	if _, err := NewRateLimiter(&Config{RateLimit: middleware.RateLimitConfig{Rate: "bogus"}}, m); err == nil {
		t.Fatalf("expected invalid rate error")
	}
}
