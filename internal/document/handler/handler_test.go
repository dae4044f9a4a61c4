package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	excelize "github.com/xuri/excelize/v2"

	"github.com/sourabhkushwaha427/dms-server/internal/config"
	"github.com/sourabhkushwaha427/dms-server/internal/document/model"
	"github.com/sourabhkushwaha427/dms-server/internal/document/service"
	"github.com/sourabhkushwaha427/dms-server/internal/document/store"
)

type fixture struct {
	router  *chi.Mux
	store   *store.Memory
	staging string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	logger := zerolog.Nop()
	fx := fixture{store: store.NewMemory(), staging: t.TempDir()}
	cfg := config.Config{MaxUploadMB: 8, StagingDir: fx.staging}
	ex := service.NewExporter(logger, nil)

	r := chi.NewRouter()
	r.Post("/documents/import", Import(cfg, logger, service.NewImporter(logger), fx.store))
	r.Get("/documents/{id}", Get(logger, fx.store))
	r.Get("/documents/{id}/export", ExportStored(logger, ex, fx.store))
	r.Post("/export", Export(logger, ex))
	fx.router = r
	return fx
}

func (fx fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)
	return rec
}

func workbookBytes(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetRow("Sheet1", "A1", &[]any{"name", "qty"}); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow("Sheet1", "A2", &[]any{"bolts", 12}); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func uploadRequest(t *testing.T, filename string, data []byte, title string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if title != "" {
		if err := mw.WriteField("title", title); err != nil {
			t.Fatal(err)
		}
	}
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/documents/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestImport(t *testing.T) {
	fx := newFixture(t)
	rec := fx.do(uploadRequest(t, "stock.xlsx", workbookBytes(t), ""))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var doc model.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if doc.ID == uuid.Nil || doc.Title != "stock" || doc.SourceType != model.SourceSheet {
		t.Fatalf("doc = %+v", doc)
	}
	content, err := model.DecodeContent(doc.ContentData)
	if err != nil {
		t.Fatalf("DecodeContent: %v", err)
	}
	if len(content.Grid) != 2 || content.Grid[1][0] != "bolts" || content.Grid[1][1] != 12.0 {
		t.Fatalf("grid = %v", content.Grid)
	}

	if _, err := fx.store.Get(t.Context(), doc.ID); err != nil {
		t.Fatalf("stored doc: %v", err)
	}
	left, err := os.ReadDir(fx.staging)
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 0 {
		t.Fatalf("staging dir not cleaned: %v", left)
	}
}

func TestImportRejects(t *testing.T) {
	fx := newFixture(t)
	tests := []struct {
		name     string
		filename string
		data     []byte
		want     int
	}{
		{"missing file", "", nil, http.StatusBadRequest},
		{"unsupported extension", "notes.txt", []byte("hello"), http.StatusBadRequest},
		{"corrupt workbook", "broken.xlsx", []byte("not a zip"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := fx.do(uploadRequest(t, tc.filename, tc.data, "x"))
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tc.want, rec.Body)
			}
			if !strings.Contains(rec.Body.String(), `"error"`) {
				t.Fatalf("body = %s", rec.Body)
			}
		})
	}
}

func TestGet(t *testing.T) {
	fx := newFixture(t)
	doc, err := fx.store.Create(t.Context(), model.Document{
		Title:       "memo",
		SourceType:  model.SourceRichText,
		ContentData: json.RawMessage(`"<p>hi</p>"`),
	})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		id   string
		want int
	}{
		{"found", doc.ID.String(), http.StatusOK},
		{"unknown", uuid.NewString(), http.StatusNotFound},
		{"bad id", "nope", http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := fx.do(httptest.NewRequest(http.MethodGet, "/documents/"+tc.id, nil))
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestExportStored(t *testing.T) {
	fx := newFixture(t)
	doc, err := fx.store.Create(t.Context(), model.Document{
		Title:       "Квартал 3",
		SourceType:  model.SourceSheet,
		ContentData: json.RawMessage(`{"data":[["a",1],["b",2]],"styles":{"A1":"font-weight: bold"}}`),
	})
	if err != nil {
		t.Fatal(err)
	}

	rec := fx.do(httptest.NewRequest(http.MethodGet, "/documents/"+doc.ID.String()+"/export", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != service.MimeXLSX {
		t.Fatalf("Content-Type = %q", ct)
	}
	_, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	if err != nil {
		t.Fatalf("Content-Disposition: %v", err)
	}
	if params["filename"] != "Квартал 3.xlsx" {
		t.Fatalf("filename = %q", params["filename"])
	}

	f, err := excelize.OpenReader(rec.Body)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[1][0] != "b" || rows[1][1] != "2" {
		t.Fatalf("rows = %v", rows)
	}
}

func TestExportPosted(t *testing.T) {
	fx := newFixture(t)
	tests := []struct {
		name     string
		body     string
		want     int
		wantType string
	}{
		{
			name:     "rich text",
			body:     `{"title":"Minutes","doc_source_type":"rich_text","content_data":"<h1>Agenda</h1><p>one</p>"}`,
			want:     http.StatusOK,
			wantType: service.MimeDOCX,
		},
		{
			name:     "sheet",
			body:     `{"title":"Grid","doc_source_type":"sheet","content_data":[["x"]]}`,
			want:     http.StatusOK,
			wantType: service.MimeXLSX,
		},
		{"unknown kind", `{"title":"x","doc_source_type":"slides","content_data":"{}"}`, http.StatusBadRequest, ""},
		{"malformed sheet", `{"title":"x","doc_source_type":"sheet","content_data":"not json"}`, http.StatusBadRequest, ""},
		{"missing kind", `{"title":"x","content_data":[]}`, http.StatusBadRequest, ""},
		{"control chars in title", `{"title":"a\u0007b","doc_source_type":"sheet","content_data":[]}`, http.StatusBadRequest, ""},
		{"bad json", `{`, http.StatusBadRequest, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/export", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			rec := fx.do(req)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tc.want, rec.Body)
			}
			if tc.wantType != "" && rec.Header().Get("Content-Type") != tc.wantType {
				t.Fatalf("Content-Type = %q", rec.Header().Get("Content-Type"))
			}
			if tc.want != http.StatusOK && rec.Header().Get("Content-Disposition") != "" {
				t.Fatal("error response carries an attachment header")
			}
		})
	}
}

type failingWriter struct {
	http.ResponseWriter
}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("client gone") }

func TestTrackingWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	tw := &trackingWriter{ResponseWriter: rec}
	if tw.sent {
		t.Fatal("fresh writer marked as sent")
	}
	if _, err := io.WriteString(tw, "PK"); err != nil {
		t.Fatal(err)
	}
	if !tw.sent || rec.Body.String() != "PK" {
		t.Fatalf("sent = %v, body %q", tw.sent, rec.Body)
	}

	tw = &trackingWriter{ResponseWriter: failingWriter{httptest.NewRecorder()}}
	if _, err := tw.Write([]byte("x")); err == nil || !tw.sent {
		t.Fatalf("err = %v, sent = %v", err, tw.sent)
	}
}
