package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/methodcheck-testserver/internal/config"
)

const wantAllow = "GET, POST, PUT, DELETE, OPTIONS"

func newTestServer() *echo.Echo {
	return New(config.Config{BodyLimit: "1K"}, zerolog.Nop())
}

func serve(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestOptionsPreflight(t *testing.T) {
	rec := serve(newTestServer(), http.MethodOptions, APITestPath, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, wantAllow, rec.Header().Get("Allow"))
}

func TestGet(t *testing.T) {
	rec := serve(newTestServer(), http.MethodGet, APITestPath, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message": "GET request received"}`, rec.Body.String())
	assert.Equal(t, wantAllow, rec.Header().Get("Allow"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestPostEchoesBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "object", body: `{"a": 1, "b": [1,2,3]}`},
		{name: "array", body: `[true, null, "x"]`},
		{name: "string", body: `"hello"`},
		{name: "null", body: `null`},
		{name: "big number", body: `{"n": 12345678901234567890}`},
	}

	e := newTestServer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e, http.MethodPost, APITestPath, tt.body)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"message": "POST request received", "data": `+tt.body+`}`, rec.Body.String())
			assert.Equal(t, wantAllow, rec.Header().Get("Allow"))
		})
	}
}

func TestPostWithoutJSONContentType(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, APITestPath, strings.NewReader(`{"k":"v"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMETextPlain)
	rec := httptest.NewRecorder()
	newTestServer().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message": "POST request received", "data": {"k": "v"}}`, rec.Body.String())
}

func TestPostMalformedJSON(t *testing.T) {
	e := newTestServer()
	for _, body := range []string{`{"a": `, `not json`, `{} {}`, "\"\xff\xfe\""} {
		rec := serve(e, http.MethodPost, APITestPath, body)

		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, wantAllow, rec.Header().Get("Allow"), body)
	}
}

func TestPostEmptyBody(t *testing.T) {
	rec := serve(newTestServer(), http.MethodPost, APITestPath, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, wantAllow, rec.Header().Get("Allow"))
}

func TestPostBodyTooLarge(t *testing.T) {
	body := `{"pad": "` + strings.Repeat("x", 2048) + `"}`
	rec := serve(newTestServer(), http.MethodPost, APITestPath, body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, wantAllow, rec.Header().Get("Allow"))
}

func TestUnroutedMethodsNotAllowed(t *testing.T) {
	e := newTestServer()
	for _, method := range []string{http.MethodPut, http.MethodDelete, http.MethodPatch} {
		rec := serve(e, method, APITestPath, "")

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
		// The router's own Allow value is replaced by the advertised one.
		assert.Equal(t, wantAllow, rec.Header().Get("Allow"), method)
		assert.Len(t, rec.Header().Values("Allow"), 1, method)
	}
}

func TestUnknownPathStillCarriesAllow(t *testing.T) {
	rec := serve(newTestServer(), http.MethodGet, "/nope", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, wantAllow, rec.Header().Get("Allow"))
}

func TestRecoveredPanicCarriesAllow(t *testing.T) {
	e := newTestServer()
	e.GET("/boom", func(echo.Context) error { panic("boom") })

	rec := serve(e, http.MethodGet, "/boom", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, wantAllow, rec.Header().Get("Allow"))
}

func TestRequestIDHeader(t *testing.T) {
	rec := serve(newTestServer(), http.MethodGet, APITestPath, "")

	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}
