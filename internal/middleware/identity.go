package middleware

import "github.com/labstack/echo/v4"

// UserID returns the authenticated user name stored by JWTAuth, or "" for
// anonymous requests.
func UserID(c echo.Context) string {
	s, _ := c.Get(ContextUserID).(string)
	return s
}

// Role returns the role claim stored by JWTAuth, or "".
func Role(c echo.Context) string {
	s, _ := c.Get(ContextRole).(string)
	return s
}

// rateKeyUser is the user component of rate limit keys.
func rateKeyUser(c echo.Context) string {
	if id := UserID(c); id != "" {
		return id
	}
	return "anon"
}
