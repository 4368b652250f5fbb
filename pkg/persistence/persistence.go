// Package persistence defines the snapshot storage boundary the engine
// talks to at suspend/resume time, and nowhere else.
package persistence

import (
	"context"

	"github.com/fermata-run/fermata/pkg/models"
)

// SnapshotRepository durably stores suspended-run snapshots keyed by
// execution id. Implementations live behind this boundary; the engine
// never retries writes itself — a failed save is surfaced and the
// in-memory run stays suspended so the caller may try again.
type SnapshotRepository interface {
	SaveSnapshot(ctx context.Context, snapshot *models.Snapshot) error
	LoadSnapshot(ctx context.Context, executionID string) (*models.Snapshot, error)
	DeleteSnapshot(ctx context.Context, executionID string) error
	ListSnapshots(ctx context.Context) ([]*models.Snapshot, error)
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
