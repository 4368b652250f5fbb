// Package redis provides a Redis-backed snapshot repository.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fermata-run/fermata/pkg/models"
	"github.com/fermata-run/fermata/pkg/persistence"
	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "fermata:snapshots:"

type Repository struct {
	client *goredis.Client
}

// NewRepository connects to the Redis instance described by url
// (e.g. "redis://localhost:6379/0").
func NewRepository(url string) (*Repository, error) {
	options, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	return &Repository{client: goredis.NewClient(options)}, nil
}

func snapshotKey(executionID string) string {
	return keyPrefix + executionID
}

func (r *Repository) SaveSnapshot(ctx context.Context, snapshot *models.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return persistence.NewSnapshotError("save", snapshot.ExecutionID, err)
	}

	if err := r.client.Set(ctx, snapshotKey(snapshot.ExecutionID), data, 0).Err(); err != nil {
		return persistence.NewSnapshotError("save", snapshot.ExecutionID, err)
	}

	return nil
}

func (r *Repository) LoadSnapshot(ctx context.Context, executionID string) (*models.Snapshot, error) {
	data, err := r.client.Get(ctx, snapshotKey(executionID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, persistence.NewSnapshotError("load", executionID, persistence.ErrSnapshotNotFound)
		}

		return nil, persistence.NewSnapshotError("load", executionID, err)
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, persistence.NewSnapshotError("load", executionID, err)
	}

	return &snapshot, nil
}

func (r *Repository) DeleteSnapshot(ctx context.Context, executionID string) error {
	deleted, err := r.client.Del(ctx, snapshotKey(executionID)).Result()
	if err != nil {
		return persistence.NewSnapshotError("delete", executionID, err)
	}

	if deleted == 0 {
		return persistence.NewSnapshotError("delete", executionID, persistence.ErrSnapshotNotFound)
	}

	return nil
}

func (r *Repository) ListSnapshots(ctx context.Context) ([]*models.Snapshot, error) {
	snapshots := make([]*models.Snapshot, 0)

	iter := r.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		data, err := r.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if errors.Is(err, goredis.Nil) {
				continue
			}

			return nil, persistence.NewSnapshotError("list", "", err)
		}

		var snapshot models.Snapshot
		if err := json.Unmarshal(data, &snapshot); err != nil {
			return nil, persistence.NewSnapshotError("list", "", err)
		}

		snapshots = append(snapshots, &snapshot)
	}

	if err := iter.Err(); err != nil {
		return nil, persistence.NewSnapshotError("list", "", err)
	}

	return snapshots, nil
}

func (r *Repository) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Repository) Close(ctx context.Context) error {
	return r.client.Close()
}
