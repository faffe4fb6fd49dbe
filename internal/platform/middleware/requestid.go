package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	RequestIDHeader = "X-Request-ID"

	// ctxKeyRequestID is where RequestID stores the id for the other
	// middleware in this package.
	ctxKeyRequestID = "request_id"
)

// RequestID propagates an incoming X-Request-ID or generates one, storing
// it in the context and echoing it back on the response.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(RequestIDHeader)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Set(ctxKeyRequestID, rid)
			c.Response().Header().Set(RequestIDHeader, rid)
			return next(c)
		}
	}
}
