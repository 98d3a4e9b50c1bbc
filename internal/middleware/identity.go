package middleware

// identity.go holds the context keys written by JWTAuth and the helpers
// that read them back.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// UserID returns the authenticated user id stored by JWTAuth.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(ctxUserID).(uint64)
	return id, ok && id != 0
}

// Role returns the authenticated role stored by JWTAuth.
func Role(c echo.Context) (string, bool) {
	r, ok := c.Get(ctxRole).(string)
	return r, ok && r != ""
}

// subjectKey identifies the caller for rate limiting: the user id when
// authenticated, "anon" otherwise.
func subjectKey(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
