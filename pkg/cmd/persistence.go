package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fermata-run/fermata/pkg/persistence"
	"github.com/fermata-run/fermata/pkg/persistence/file"
	"github.com/fermata-run/fermata/pkg/persistence/postgresql"
	"github.com/fermata-run/fermata/pkg/persistence/redis"
)

var supportedPersistenceProviders = []string{"file", "postgres", "postgresql", "redis"}

// NewPersistence builds a snapshot repository from a database URL. The
// scheme picks the backend; anything unrecognized falls back to the
// file store with the URL as its root path.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.SnapshotRepository, error) {
	switch parsePersistenceProvider(databaseURL) {
	case "postgres", "postgresql":
		return postgresql.NewRepository(ctx, logger, databaseURL)
	case "redis":
		repo, err := redis.NewRepository(databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis persistence: %w", err)
		}

		return repo, nil
	default:
		return file.NewRepository(databaseURL), nil
	}
}

func parsePersistenceProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	for _, supported := range supportedPersistenceProviders {
		if provider == supported {
			return provider
		}
	}

	return "file"
}
