package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"
)

func Recover(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error().
					Str("rid", GetRequestID(r)).
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Msg("panic")
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.Header().Del("Content-Disposition")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"internal"}`))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
