package http

import (
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/aisgo/ais-validate/ruleset"

	"github.com/gofiber/fiber/v3"
)

func TestBuildListenConfigDefaults(t *testing.T) {
	cfg := buildListenConfig(ListenOptions{})
	if cfg.ListenerNetwork != "tcp4" {
		t.Fatalf("unexpected listener network: %s", cfg.ListenerNetwork)
	}
}

func TestBuildListenConfigOverrides(t *testing.T) {
	cfg := buildListenConfig(ListenOptions{
		EnablePrefork:         true,
		DisableStartupMessage: true,
		EnablePrintRoutes:     true,
		ListenerNetwork:       "tcp6",
		ShutdownTimeout:       2 * time.Second,
		UnixSocketFileMode:    0771,
		TLSMinVersion:         772,
	})
	if !cfg.EnablePrefork || !cfg.DisableStartupMessage || !cfg.EnablePrintRoutes {
		t.Fatalf("unexpected boolean settings")
	}
	if cfg.ListenerNetwork != "tcp6" {
		t.Fatalf("unexpected listener network: %s", cfg.ListenerNetwork)
	}
	if cfg.ShutdownTimeout != 2*time.Second {
		t.Fatalf("unexpected shutdown timeout: %v", cfg.ShutdownTimeout)
	}
	if cfg.UnixSocketFileMode == 0 {
		t.Fatalf("expected unix socket file mode to be set")
	}
	if cfg.TLSMinVersion != 772 {
		t.Fatalf("unexpected tls min version: %d", cfg.TLSMinVersion)
	}
}

func testCatalog(t *testing.T) *ruleset.Catalog {
	t.Helper()
	set, err := ruleset.Load(ruleset.NewContentLoader([]byte(`
forms:
  signup:
    fields:
      - name: email
        display: Email
        rules: required|valid_email
      - name: password
        rules: required|min_length[8]
      - name: terms
        display: Terms
        rules: required
`), "yaml"))
	if err != nil {
		t.Fatalf("load rule set: %v", err)
	}
	catalog, err := ruleset.NewCatalog(set, ruleset.Extensions{})
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	return catalog
}

func TestHealthEndpoints(t *testing.T) {
	app := fiber.New()
	registerHealthEndpoints(app, testCatalog(t))

	req := httptest.NewRequest("GET", "/healthz", nil)
	resp, err := app.Test(req, fiber.TestConfig{Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}

	req = httptest.NewRequest("GET", "/readyz", nil)
	resp, err = app.Test(req, fiber.TestConfig{Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected status body: %v", body["status"])
	}
}

func TestReadyzWithoutForms(t *testing.T) {
	app := fiber.New()
	registerHealthEndpoints(app, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/readyz", nil), fiber.TestConfig{Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestListenAddr(t *testing.T) {
	if got := listenAddr(Config{Port: 8080}, "tcp4"); got != ":8080" {
		t.Fatalf("unexpected addr: %s", got)
	}
	if got := listenAddr(Config{Host: "127.0.0.1", Port: 8080}, "tcp4"); got != "127.0.0.1:8080" {
		t.Fatalf("unexpected addr: %s", got)
	}
	if got := listenAddr(Config{Host: "/tmp/validate.sock", Port: 8080}, networkUnix); got != "/tmp/validate.sock" {
		t.Fatalf("unexpected addr: %s", got)
	}
}

func TestCreateListener(t *testing.T) {
	ln, err := createListener("127.0.0.1:0", buildListenConfig(ListenOptions{}))
	if err != nil {
		t.Fatalf("tcp listener: %v", err)
	}
	_ = ln.Close()

	sock := filepath.Join(t.TempDir(), "validate.sock")
	cfg := buildListenConfig(ListenOptions{ListenerNetwork: networkUnix, UnixSocketFileMode: 0o700})
	for range 2 {
		ln, err = createListener(sock, cfg)
		if err != nil {
			t.Fatalf("unix listener: %v", err)
		}
		_ = ln.Close()
	}

	_, err = createListener("127.0.0.1:0", buildListenConfig(ListenOptions{CertFile: "missing.pem", CertKeyFile: "missing.key"}))
	if err == nil {
		t.Fatalf("expected certificate error")
	}
}
