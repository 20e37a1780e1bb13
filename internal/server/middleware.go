package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	mdview "github.com/alnah/go-mdview"
	"github.com/go-chi/chi/v5/middleware"
)

// SessionCookie names the cookie holding the session id.
const SessionCookie = "mdview_session"

type sessionKey struct{}

// requestLogger logs one line per request.
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"request_id", middleware.GetReqID(r.Context()),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// withSession attaches the caller's session to the request context,
// starting one and setting the cookie when needed.
func withSession(store *sessionStore, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sess *mdview.Session
			if c, err := r.Cookie(SessionCookie); err == nil {
				sess, _ = store.get(c.Value)
			}
			if sess == nil {
				var id string
				id, sess = store.create()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    id,
					Path:     "/",
					MaxAge:   int(ttl.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx := context.WithValue(r.Context(), sessionKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sessionFrom returns the session attached by withSession.
func sessionFrom(ctx context.Context) *mdview.Session {
	sess, _ := ctx.Value(sessionKey{}).(*mdview.Session)
	return sess
}
