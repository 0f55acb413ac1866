package router // package router builds the echo instance and registers the test endpoint

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/iliyamo/methodcheck-testserver/internal/config"
	"github.com/iliyamo/methodcheck-testserver/internal/handler"
	"github.com/iliyamo/methodcheck-testserver/internal/middleware"
)

// APITestPath is the only application route.
const APITestPath = "/api/test"

// New returns an echo instance with the middleware chain installed and the
// test route registered.  The Allow hook is installed first so it covers
// every response, including router 404/405 answers and recovered panics.
func New(cfg config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Allow(middleware.AdvertisedMethods))
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLog(log))
	e.Use(echomw.Recover())
	e.Use(echomw.BodyLimit(cfg.BodyLimit))

	RegisterRoutes(e)
	return e
}

// RegisterRoutes maps GET, POST and OPTIONS on /api/test to the handler.
// Other methods on the path get echo's 405 response.
func RegisterRoutes(e *echo.Echo) {
	e.Match([]string{http.MethodGet, http.MethodPost, http.MethodOptions}, APITestPath, handler.APITest)
}
