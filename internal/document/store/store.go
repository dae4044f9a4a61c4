// Package store persists document records for the import and export handlers.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/sourabhkushwaha427/dms-server/internal/document/model"
)

var ErrNotFound = errors.New("document not found")

type Store interface {
	Create(ctx context.Context, doc model.Document) (model.Document, error)
	Get(ctx context.Context, id uuid.UUID) (model.Document, error)
}
