// Package store bridges the SQLite metering store to the pipeline's Meter
// interface.
package store

import (
	"context"

	"github.com/ppansari/feedbackgen/internal/adapter/store/sqlite"
	"github.com/ppansari/feedbackgen/internal/usecase/feedback"
)

// Bridge adapts *sqlite.Store to feedback.Meter.
type Bridge struct {
	store *sqlite.Store
}

// NewBridge wraps a SQLite store.
func NewBridge(s *sqlite.Store) *Bridge {
	return &Bridge{store: s}
}

// RecordCall persists one metered generation call.
func (b *Bridge) RecordCall(ctx context.Context, rec feedback.CallRecord) error {
	return b.store.RecordCall(ctx, sqlite.CallRow{
		Unit:             rec.Unit,
		Stage:            rec.Stage,
		Model:            rec.Model,
		PromptTokens:     rec.Usage.PromptTokens,
		CachedTokens:     rec.Usage.CachedTokens,
		CompletionTokens: rec.Usage.CompletionTokens,
		CreatedAt:        rec.At,
	})
}

// Close releases the underlying store.
func (b *Bridge) Close() error {
	return b.store.Close()
}
