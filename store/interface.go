package store

import (
	"context"

	"github.com/heimdall-ai/heimdall/models"
)

// RuleStore defines the interface for rules persistence.
// The whole document is read and written at once; there is no partial update.
type RuleStore interface {
	// Load returns the persisted document, or an empty one if nothing has been saved yet.
	Load(ctx context.Context) (models.RuleDatabase, error)

	// Save overwrites the persisted document.
	Save(ctx context.Context, db models.RuleDatabase) error

	// Update runs a read-modify-write cycle. If fn returns an error nothing is written
	// and that error is returned unchanged.
	Update(ctx context.Context, fn func(db *models.RuleDatabase) error) error

	// Path reports where the document lives, for logs and watchers.
	Path() string

	// Close releases any resources held by the store, such as file locks.
	Close() error
}
