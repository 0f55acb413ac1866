package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
)

// Header values sent on a CORS preflight to /api/test.
const (
	PreflightAllowOrigin  = "*"
	PreflightAllowMethods = "GET, POST, OPTIONS"
	PreflightAllowHeaders = "Content-Type"
)

type messageResp struct {
	Message string `json:"message"`
}

// postResp echoes the request body back untouched.  RawMessage keeps number
// precision and key order of the client's document.
type postResp struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// APITest serves GET, POST and OPTIONS on /api/test.  The route only registers
// those three methods; anything else is answered by the router with 405 before
// this handler runs.
func APITest(c echo.Context) error {
	switch c.Request().Method {
	case http.MethodOptions:
		h := c.Response().Header()
		h.Set(echo.HeaderAccessControlAllowOrigin, PreflightAllowOrigin)
		h.Set(echo.HeaderAccessControlAllowMethods, PreflightAllowMethods)
		h.Set(echo.HeaderAccessControlAllowHeaders, PreflightAllowHeaders)
		return c.NoContent(http.StatusOK)
	case http.MethodGet:
		return c.JSON(http.StatusOK, messageResp{Message: "GET request received"})
	case http.MethodPost:
		data, err := readJSONBody(c)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, postResp{Message: "POST request received", Data: data})
	}
	return echo.ErrMethodNotAllowed
}

// readJSONBody returns the request body when it holds exactly one UTF-8
// encoded JSON value.  The Content-Type header is not inspected.
func readJSONBody(c echo.Context) (json.RawMessage, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		// BodyLimit surfaces oversized bodies as an *echo.HTTPError (413).
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return nil, he
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "failed to read request body").SetInternal(err)
	}
	if !utf8.Valid(body) || !json.Valid(body) {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "failed to decode JSON object")
	}
	return json.RawMessage(body), nil
}
