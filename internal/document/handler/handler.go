package handler

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sourabhkushwaha427/dms-server/internal/config"
	"github.com/sourabhkushwaha427/dms-server/internal/document/model"
	"github.com/sourabhkushwaha427/dms-server/internal/document/service"
	"github.com/sourabhkushwaha427/dms-server/internal/document/store"
	"github.com/sourabhkushwaha427/dms-server/internal/fileio"
	"github.com/sourabhkushwaha427/dms-server/internal/middleware"
	"github.com/sourabhkushwaha427/dms-server/internal/validation"
)

// exportRequest is a document posted for a one-off export.
type exportRequest struct {
	Title       string          `json:"title" validate:"doc_title"`
	SourceType  string          `json:"doc_source_type" validate:"required"`
	ContentData json.RawMessage `json:"content_data"`
}

func requestLogger(logger zerolog.Logger, r *http.Request) zerolog.Logger {
	if rid := middleware.GetRequestID(r); rid != "" {
		return logger.With().Str("rid", rid).Logger()
	}
	return logger
}

// Import stages the multipart "file" upload, converts it and stores the result.
// r.Post("/documents/import", docHnd.Import(cfg, logger, importer, st))
func Import(cfg config.Config, logger zerolog.Logger, im *service.Importer, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := requestLogger(logger, r)
		defer r.Body.Close()

		if err := r.ParseMultipartForm(int64(cfg.MaxUploadMB) << 20); err != nil {
			writeError(w, log, http.StatusBadRequest, "bad multipart form: "+err.Error())
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, log, http.StatusBadRequest, "missing file: "+err.Error())
			return
		}
		defer file.Close()

		doc, err := im.ImportUpload(file, header.Filename, r.FormValue("title"), cfg.StagingDir)
		switch {
		case errors.Is(err, fileio.ErrUnsupportedFile):
			writeError(w, log, http.StatusBadRequest, err.Error())
			return
		case err != nil:
			log.Error().Err(err).Str("file", header.Filename).Msg("import failed")
			writeError(w, log, http.StatusInternalServerError, "failed to read workbook")
			return
		}

		doc, err = st.Create(r.Context(), doc)
		if err != nil {
			log.Error().Err(err).Msg("store document")
			writeError(w, log, http.StatusInternalServerError, "failed to store document")
			return
		}
		writeJSON(w, log, http.StatusCreated, doc)

		log.Info().
			Str("id", doc.ID.String()).
			Str("file", header.Filename).
			Int64("size", header.Size).
			Dur("elapsed", time.Since(start)).
			Msg("import done")
	}
}

// Get returns the stored record.
func Get(logger zerolog.Logger, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(logger, r)
		doc, ok := load(w, r, log, st)
		if !ok {
			return
		}
		writeJSON(w, log, http.StatusOK, doc)
	}
}

// ExportStored streams the stored document as .xlsx or .docx.
func ExportStored(logger zerolog.Logger, ex *service.Exporter, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(logger, r)
		doc, ok := load(w, r, log, st)
		if !ok {
			return
		}
		serveExport(w, log, ex, doc)
	}
}

// Export converts a document posted as JSON without storing it.
func Export(logger zerolog.Logger, ex *service.Exporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(logger, r)
		defer r.Body.Close()

		var req exportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, log, http.StatusBadRequest, "bad json: "+err.Error())
			return
		}
		if err := validation.Validate(req); err != nil {
			writeError(w, log, http.StatusBadRequest, err.Error())
			return
		}
		serveExport(w, log, ex, model.Document{
			Title:       req.Title,
			SourceType:  model.SourceType(req.SourceType),
			ContentData: req.ContentData,
		})
	}
}

func load(w http.ResponseWriter, r *http.Request, log zerolog.Logger, st store.Store) (model.Document, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, log, http.StatusBadRequest, "bad document id")
		return model.Document{}, false
	}
	doc, err := st.Get(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, log, http.StatusNotFound, "document not found")
		return model.Document{}, false
	case err != nil:
		log.Error().Err(err).Str("id", id.String()).Msg("load document")
		writeError(w, log, http.StatusInternalServerError, "failed to load document")
		return model.Document{}, false
	}
	return doc, true
}

func serveExport(w http.ResponseWriter, log zerolog.Logger, ex *service.Exporter, doc model.Document) {
	start := time.Now()
	dl, err := ex.Prepare(doc)
	switch {
	case errors.Is(err, service.ErrUnsupportedContentKind), errors.Is(err, service.ErrMalformedContent):
		writeError(w, log, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Error().Err(err).Msg("prepare export")
		writeError(w, log, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", dl.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": dl.Filename}))
	w.Header().Set("Cache-Control", "no-store")

	tw := &trackingWriter{ResponseWriter: w}
	n, err := dl.WriteTo(tw)
	if err != nil {
		log.Error().Err(err).Bool("headers_sent", tw.sent).Int64("written", n).Msg("export failed")
		if !tw.sent {
			writeError(w, log, http.StatusInternalServerError, "export failed")
		}
		return
	}
	log.Info().
		Str("kind", string(doc.SourceType)).
		Str("file", dl.Filename).
		Int64("size", n).
		Dur("elapsed", time.Since(start)).
		Msg("export done")
}
