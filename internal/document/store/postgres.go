package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/sourabhkushwaha427/dms-server/internal/document/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents_content (
	id              uuid PRIMARY KEY,
	title           text        NOT NULL,
	doc_source_type text        NOT NULL,
	content_data    jsonb       NOT NULL,
	created_at      timestamptz NOT NULL DEFAULT now()
)`

// Postgres stores documents in the documents_content table; content_data is
// kept verbatim as jsonb.
type Postgres struct {
	db *sql.DB
}

// NewPostgres wraps an open "postgres" handle.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Migrate creates the table when it does not exist yet.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate documents_content: %w", err)
	}
	return nil
}

func (p *Postgres) Create(ctx context.Context, doc model.Document) (model.Document, error) {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	content := doc.ContentData
	if !json.Valid(content) {
		// rich text may arrive as bare HTML; store it as a JSON string
		b, err := json.Marshal(string(content))
		if err != nil {
			return model.Document{}, err
		}
		content = b
	}
	const q = `INSERT INTO documents_content (id, title, doc_source_type, content_data, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := p.db.ExecContext(ctx, q, doc.ID, doc.Title, string(doc.SourceType), []byte(content), doc.CreatedAt); err != nil {
		return model.Document{}, fmt.Errorf("insert document: %w", err)
	}
	doc.ContentData = content
	return doc, nil
}

func (p *Postgres) Get(ctx context.Context, id uuid.UUID) (model.Document, error) {
	const q = `SELECT id, title, doc_source_type, content_data, created_at
		FROM documents_content WHERE id = $1`
	var (
		doc     model.Document
		kind    string
		content []byte
	)
	err := p.db.QueryRowContext(ctx, q, id).Scan(&doc.ID, &doc.Title, &kind, &content, &doc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Document{}, ErrNotFound
	}
	if err != nil {
		return model.Document{}, fmt.Errorf("select document: %w", err)
	}
	doc.SourceType = model.SourceType(kind)
	doc.ContentData = content
	return doc, nil
}
