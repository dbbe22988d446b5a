package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"
)

type RequestOption func(req *http.Request) *http.Request

func WithContext(ctx context.Context) RequestOption {
	return func(req *http.Request) *http.Request {
		return req.WithContext(ctx)
	}
}

func WithHeader(key string, value string, values ...string) RequestOption {
	return func(req *http.Request) *http.Request {
		req.Header.Add(key, value)
		for _, v := range values {
			req.Header.Add(key, v)
		}
		return req
	}
}

// = WithHeader("Content-Type", ctyp)
func ContentType(ctyp string) RequestOption {
	return WithHeader("Content-Type", ctyp)
}

// = ContentType("application/json")
func JSON() RequestOption {
	return ContentType(echo.MIMEApplicationJSON)
}

// Body makes a request body from a string.
//
// nil is returned for an empty string.
func Body(s string) io.Reader {
	if s == "" {
		return nil
	}
	return strings.NewReader(s)
}

func newContext(e *echo.Echo, method string, target string, data io.Reader, reqopts ...RequestOption) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, data)
	for _, opt := range reqopts {
		req = opt(req)
	}
	resp := httptest.NewRecorder()

	ctx := e.NewContext(req, resp)
	return ctx, resp
}

func Get(e *echo.Echo, target string, reqopts ...RequestOption) (echo.Context, *httptest.ResponseRecorder) {
	return newContext(e, http.MethodGet, target, nil, reqopts...)
}

func Post(e *echo.Echo, target string, data io.Reader, reqopts ...RequestOption) (echo.Context, *httptest.ResponseRecorder) {
	return newContext(e, http.MethodPost, target, data, reqopts...)
}

func Put(e *echo.Echo, target string, data io.Reader, reqopts ...RequestOption) (echo.Context, *httptest.ResponseRecorder) {
	return newContext(e, http.MethodPut, target, data, reqopts...)
}

// Delete makes a DELETE request. data can be nil.
func Delete(e *echo.Echo, target string, data io.Reader, reqopts ...RequestOption) (echo.Context, *httptest.ResponseRecorder) {
	return newContext(e, http.MethodDelete, target, data, reqopts...)
}

// Serve sends a request through routes and middlewares of e.
func Serve(e *echo.Echo, method string, target string, data io.Reader, reqopts ...RequestOption) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, data)
	for _, opt := range reqopts {
		req = opt(req)
	}
	resp := httptest.NewRecorder()
	e.ServeHTTP(resp, req)
	return resp
}
