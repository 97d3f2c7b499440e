package middlewares

import (
	"context"
	"mime"
	"net/http"
	"strings"

	"github.com/felixge/httpsnoop"
	"github.com/go-chi/chi/middleware"

	"github.com/mbolis/survey-studio/httpx"
	"github.com/mbolis/survey-studio/log"
)

type contextKey struct{ name string }

var userIDKey = &contextKey{"UserID"}

// Authenticated lets through requests whose bearer token was verified, and
// puts the id of the token owner in the request context.
func Authenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := httpx.UserID(r.Context())
		if err != nil {
			httpx.LogStatusMsg(w, r, http.StatusUnauthorized, log.DebugLevel, "auth.token", "%s", err)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the id stored by Authenticated.
func UserID(r *http.Request) int64 {
	id, _ := r.Context().Value(userIDKey).(int64)
	return id
}

// RequestLog logs one line per request with its outcome.
func RequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)

		entry := log.WithFields(log.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     m.Code,
			"bytes":      m.Written,
			"duration":   m.Duration.String(),
		})
		if m.Code >= http.StatusInternalServerError {
			entry.Warn("request failed")
		} else {
			entry.Info("request")
		}
	})
}

// JSONErrors rewrites error responses that are not JSON, like the router
// defaults for unknown routes, into a {"message": ...} body.
func JSONErrors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := httpx.NewResponseBuffer()
		next.ServeHTTP(buf, r)

		status := buf.Status()
		if status < http.StatusBadRequest || isJSON(buf.Header().Get("Content-Type")) {
			if err := buf.Flush(w); err != nil {
				log.Debugf("response.flush: %s", err)
			}
			return
		}

		msg := strings.TrimSpace(string(buf.Body()))
		if msg == "" {
			msg = http.StatusText(status)
		}
		buf.Reset()
		httpx.Error(buf, r, status, msg)
		if err := buf.Flush(w); err != nil {
			log.Debugf("response.flush: %s", err)
		}
	})
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/json"
}
