package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

func writeJSON(w http.ResponseWriter, log zerolog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Error().Err(err).Msg("write json")
	}
}

func writeError(w http.ResponseWriter, log zerolog.Logger, status int, msg string) {
	w.Header().Del("Content-Disposition")
	writeJSON(w, log, status, map[string]string{"error": msg})
}

// trackingWriter records whether anything reached the client, after which an
// error response can no longer be sent.
type trackingWriter struct {
	http.ResponseWriter
	sent bool
}

func (t *trackingWriter) WriteHeader(code int) {
	t.sent = true
	t.ResponseWriter.WriteHeader(code)
}

func (t *trackingWriter) Write(b []byte) (int, error) {
	t.sent = true
	return t.ResponseWriter.Write(b)
}
