// Package file provides file-based snapshot storage: one JSON document
// per suspended execution.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fermata-run/fermata/pkg/models"
	"github.com/fermata-run/fermata/pkg/persistence"
)

// Repository implements persistence.SnapshotRepository on the local file
// system.
type Repository struct {
	root string
}

// NewRepository creates a snapshot repository rooted at the given
// directory, accepting either a plain path or a file:// URL.
func NewRepository(root string) *Repository {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Repository{root: cleanRoot}
}

func (r *Repository) snapshotPath(executionID string) string {
	return filepath.Join(r.root, "snapshots", executionID+".json")
}

func (r *Repository) SaveSnapshot(ctx context.Context, snapshot *models.Snapshot) error {
	dir := filepath.Join(r.root, "snapshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return persistence.NewSnapshotError("Save", snapshot.ExecutionID, err)
	}

	payload, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return persistence.NewSnapshotError("Save", snapshot.ExecutionID, err)
	}

	if err := os.WriteFile(r.snapshotPath(snapshot.ExecutionID), payload, 0o644); err != nil {
		return persistence.NewSnapshotError("Save", snapshot.ExecutionID, err)
	}

	return nil
}

func (r *Repository) LoadSnapshot(ctx context.Context, executionID string) (*models.Snapshot, error) {
	payload, err := os.ReadFile(r.snapshotPath(executionID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, persistence.NewSnapshotError("Load", executionID, persistence.ErrSnapshotNotFound)
		}

		return nil, persistence.NewSnapshotError("Load", executionID, err)
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, persistence.NewSnapshotError("Load", executionID, err)
	}

	return &snapshot, nil
}

func (r *Repository) DeleteSnapshot(ctx context.Context, executionID string) error {
	err := os.Remove(r.snapshotPath(executionID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return persistence.NewSnapshotError("Delete", executionID, persistence.ErrSnapshotNotFound)
		}

		return persistence.NewSnapshotError("Delete", executionID, err)
	}

	return nil
}

func (r *Repository) ListSnapshots(ctx context.Context) ([]*models.Snapshot, error) {
	dir := filepath.Join(r.root, "snapshots")

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*models.Snapshot{}, nil
		}

		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	snapshots := make([]*models.Snapshot, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		executionID := strings.TrimSuffix(entry.Name(), ".json")

		snapshot, err := r.LoadSnapshot(ctx, executionID)
		if err != nil {
			return nil, err
		}

		snapshots = append(snapshots, snapshot)
	}

	return snapshots, nil
}

// HealthCheck verifies the root directory exists.
func (r *Repository) HealthCheck(ctx context.Context) error {
	if _, err := os.Stat(r.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. For file storage there is none.
func (r *Repository) Close(ctx context.Context) error {
	return nil
}
