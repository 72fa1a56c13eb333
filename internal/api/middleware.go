package api

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/random"
	"github.com/restoboard/restoboard/internal/pkg/constants"
	"github.com/restoboard/restoboard/internal/pkg/logger"
)

// UserKeyMiddleware scopes the request to the account named by the
// X-User-Key header.
func UserKeyMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		userKey := ctx.Request().Header.Get(constants.HeaderUserKey)
		if userKey == "" {
			return constants.ErrMissingUserKey
		}

		ctx.Set(constants.CtxKeyUserKey, userKey)
		return next(ctx)
	}
}

// RequestIDMiddleware tags the request context so every log line of one
// request can be correlated.
func RequestIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		requestID := random.String(16)
		ctx.Set(constants.CtxKeyRequestID, requestID)

		req := ctx.Request()
		ctx.SetRequest(req.WithContext(logger.WithFields(req.Context(), "request_id", requestID)))

		return next(ctx)
	}
}
