// Package store persists work-items for the monitored drafting process.
//
// The monitor only needs two operations: fetch a work-item by id and merge a
// set of evaluation fields back into it. MergeFields is always a partial
// update; fields not named in the map are left untouched.
package store

import (
	"context"
	"errors"

	"github.com/timvw/draft-patrol/internal/model"
)

// ErrNotFound is returned by GetByID when no work-item exists for the id.
var ErrNotFound = errors.New("document not found")

// DocumentStore is the document database the drafting process writes to.
type DocumentStore interface {
	// GetByID fetches a work-item. Returns ErrNotFound when absent.
	GetByID(ctx context.Context, collection, id string) (*model.WorkItem, error)

	// MergeFields merges the given fields into the stored record. Fields
	// absent from the map keep their current values; this is never a
	// replace.
	MergeFields(ctx context.Context, collection, id string, fields map[string]any) error
}
