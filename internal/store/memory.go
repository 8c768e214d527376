package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/timvw/draft-patrol/internal/model"
)

// Memory is an in-process DocumentStore with the same merge semantics as the
// Postgres implementation. It backs tests and database-less local runs.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string]map[string]any // collection -> id -> document
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string]map[string]any)}
}

func (m *Memory) GetByID(ctx context.Context, collection, id string) (*model.WorkItem, error) {
	// Marshal under the read lock: a concurrent MergeFields writes to the
	// same map.
	m.mu.RLock()
	doc, ok := m.data[collection][id]
	var raw []byte
	var err error
	if ok {
		raw, err = json.Marshal(doc)
	}
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetByID %s/%s: encode: %w", collection, id, err)
	}
	var item model.WorkItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, fmt.Errorf("GetByID %s/%s: decode: %w", collection, id, err)
	}
	if item.DocumentID == "" {
		item.DocumentID = id
	}
	if err := item.Validate(); err != nil {
		return nil, fmt.Errorf("GetByID %s/%s: %w", collection, id, err)
	}
	return &item, nil
}

func (m *Memory) MergeFields(ctx context.Context, collection, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.data[collection][id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}

// Put upserts a full work-item.
func (m *Memory) Put(ctx context.Context, collection string, item *model.WorkItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("Put %s/%s: encode: %w", collection, item.DocumentID, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("Put %s/%s: decode: %w", collection, item.DocumentID, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[collection] == nil {
		m.data[collection] = make(map[string]map[string]any)
	}
	m.data[collection][item.DocumentID] = doc
	return nil
}

// Document returns a copy of the stored raw document, for assertions on
// merge behavior.
func (m *Memory) Document(collection, id string) (map[string]any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.data[collection][id]
	if !ok {
		return nil, false
	}
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out, true
}
