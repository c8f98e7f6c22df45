package middleware

import (
	stderrors "errors"

	"github.com/aisgo/ais-validate/errors"
	"github.com/aisgo/ais-validate/logger"
	"github.com/aisgo/ais-validate/response"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// NewErrorHandler returns a Fiber ErrorHandler with unified logging and response formatting.
// Fiber errors keep their status; business errors map through errors.HTTPStatus.
func NewErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c fiber.Ctx, err error) error {
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if stderrors.As(err, &fiberErr) {
			return response.ErrorWithCode(c, fiberErr.Code, stderrors.New(fiberErr.Message))
		}

		if log != nil && errors.HTTPStatus(err) >= fiber.StatusInternalServerError {
			log.Error("unhandled error", zap.Error(err), zap.String("path", c.Path()))
		}
		return response.Error(c, err)
	}
}
