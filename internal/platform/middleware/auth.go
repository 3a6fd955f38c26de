package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	strs "intentions/pkg/platform/strings"
	"intentions/pkg/requestcontext"
)

// RequireAPIKey rejects requests whose Authorization header is not
// "Bearer <apiKey>". An empty apiKey disables the check; the caller logs that
// at startup.
func RequireAPIKey(apiKey string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if apiKey == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}
			if subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
				logger.WarnContext(ctx, "unauthorized access - invalid api key",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w, "Invalid API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}

// RequireOrigin rejects browser requests whose Origin header is not in
// allowed. Requests without an Origin header pass. A "*" entry or an empty
// list allows everything.
func RequireOrigin(allowed []string, logger *slog.Logger) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range strs.DedupeAndTrimLower(allowed) {
		if o == "*" {
			return func(next http.Handler) http.Handler { return next }
		}
		set[strings.TrimRight(o, "/")] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		if len(set) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := set[strings.ToLower(strings.TrimRight(origin, "/"))]; !ok {
				logger.WarnContext(r.Context(), "origin rejected",
					"origin", origin,
					"request_id", requestcontext.RequestID(r.Context()),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden","error_description":"Origin not allowed"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
