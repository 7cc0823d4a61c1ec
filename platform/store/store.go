// Package store defines where live game snapshots are kept and provides
// the SQLite implementation. The Redis implementation lives in cache.
package store

import (
	"context"
	"errors"

	"github.com/DedS3t/monopoly-engine/app/models"
)

var (
	ErrGameNotFound    = errors.New("game not found")
	ErrGameExists      = errors.New("game already exists")
	ErrVersionConflict = errors.New("game state changed concurrently")
)

// Store keeps one versioned snapshot per game plus its log.
//
// Save is a compare-and-swap: it succeeds only while the stored version is
// next.Version-1, and writes the snapshot and logs together.
type Store interface {
	Create(ctx context.Context, s models.GameState) error
	Load(ctx context.Context, gameID string) (models.GameState, error)
	Save(ctx context.Context, next models.GameState, logs []models.LogEntry) error
	Logs(ctx context.Context, gameID string) ([]models.LogEntry, error)
	Delete(ctx context.Context, gameID string) error
}
