package store

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sourabhkushwaha427/dms-server/internal/document/model"
)

// Memory keeps documents in a map. Stored content is copied in and out so callers
// never share a buffer with the store.
type Memory struct {
	mu   sync.RWMutex
	docs map[uuid.UUID]model.Document
}

func NewMemory() *Memory {
	return &Memory{docs: map[uuid.UUID]model.Document{}}
}

func (m *Memory) Create(ctx context.Context, doc model.Document) (model.Document, error) {
	if err := ctx.Err(); err != nil {
		return model.Document{}, err
	}
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	doc.ContentData = bytes.Clone(doc.ContentData)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[doc.ID]; ok {
		return model.Document{}, fmt.Errorf("document %s already exists", doc.ID)
	}
	m.docs[doc.ID] = doc
	return cloneDoc(doc), nil
}

func (m *Memory) Get(ctx context.Context, id uuid.UUID) (model.Document, error) {
	if err := ctx.Err(); err != nil {
		return model.Document{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[id]
	if !ok {
		return model.Document{}, ErrNotFound
	}
	return cloneDoc(doc), nil
}

func cloneDoc(doc model.Document) model.Document {
	doc.ContentData = bytes.Clone(doc.ContentData)
	return doc
}
