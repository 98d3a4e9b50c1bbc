package handler // handler defines the HTTP handlers of the auth API

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
)

// defaultTimeout bounds the store calls made on behalf of one request.
const defaultTimeout = 5 * time.Second

// requestContext derives a context from the request with the given timeout
// (defaultTimeout when zero).
func requestContext(c echo.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return context.WithTimeout(c.Request().Context(), timeout)
}
