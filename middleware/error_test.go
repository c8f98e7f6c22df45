package middleware

import (
	stderrors "errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aisgo/ais-validate/errors"
	"github.com/aisgo/ais-validate/logger"

	"github.com/gofiber/fiber/v3"
)

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: NewErrorHandler(logger.NewNop())})
	app.Get("/form", func(fiber.Ctx) error {
		return errors.Wrapf(errors.ErrCodeFormNotFound, nil, "form %q not found", "signup")
	})
	app.Get("/fiber", func(fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "teapot") })
	app.Get("/plain", func(fiber.Ctx) error { return stderrors.New("boom") })

	tests := []struct {
		path   string
		status int
	}{
		{"/form", fiber.StatusNotFound},
		{"/fiber", fiber.StatusTeapot},
		{"/plain", fiber.StatusInternalServerError},
		{"/missing", fiber.StatusNotFound},
	}
	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil), fiber.TestConfig{Timeout: 2 * time.Second})
		if err != nil {
			t.Fatalf("%s: app.Test: %v", tt.path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.status {
			t.Fatalf("%s: expected %d, got %d", tt.path, tt.status, resp.StatusCode)
		}
	}
}
