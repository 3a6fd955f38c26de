package testutil

import (
	"net/http"
	"time"

	"intentions/pkg/requestcontext"
)

// WithRequestTime pins the request-scoped clock, as the request time
// middleware would.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}

// WithBearer sets an Authorization: Bearer header.
func WithBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

// WithOrigin sets the Origin header.
func WithOrigin(req *http.Request, origin string) *http.Request {
	req.Header.Set("Origin", origin)
	return req
}
