package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type ctxKey int

const requestIDKey ctxKey = 1

// maxRequestID bounds client-supplied ids echoed into logs.
const maxRequestID = 128

// RequestID tags each request with the caller's X-Request-ID or a fresh UUID.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := r.Header.Get("X-Request-ID")
			if rid == "" || len(rid) > maxRequestID {
				rid = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", rid)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, rid)))
		})
	}
}

func GetRequestID(r *http.Request) string {
	rid, _ := r.Context().Value(requestIDKey).(string)
	return rid
}
