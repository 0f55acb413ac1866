package middleware

import (
	"github.com/labstack/echo/v4"
)

// AdvertisedMethods is the Allow value stamped on every response.  It lists
// PUT and DELETE even though /api/test does not route them; clients under test
// are expected to cope with the mismatch.
const AdvertisedMethods = "GET, POST, PUT, DELETE, OPTIONS"

// Allow sets the Allow header on every response just before the status line
// is written, overriding any value set by the handler, the router's 405
// handler or the HTTP error handler.
func Allow(methods string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			res := c.Response()
			res.Before(func() {
				res.Header().Set(echo.HeaderAllow, methods)
			})
			return next(c)
		}
	}
}
