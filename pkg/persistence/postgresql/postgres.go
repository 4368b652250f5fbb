// Package postgresql provides PostgreSQL persistence for execution snapshots.
package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	// PostgreSQL driver registration.
	_ "github.com/lib/pq"

	"github.com/fermata-run/fermata/pkg/models"
	"github.com/fermata-run/fermata/pkg/persistence"
	"github.com/fermata-run/fermata/pkg/persistence/sqlbase"
)

// Repository implements the snapshot repository for PostgreSQL.
type Repository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewRepository connects to PostgreSQL and runs pending schema migrations.
func NewRepository(ctx context.Context, logger *slog.Logger, databaseURL string) (*Repository, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Repository{
		db:     database,
		logger: logger.With("module", "postgresql_persistence"),
	}, nil
}

func (r *Repository) SaveSnapshot(ctx context.Context, snapshot *models.Snapshot) error {
	contextData, err := json.Marshal(snapshot.Context)
	if err != nil {
		return persistence.NewSnapshotError("save", snapshot.ExecutionID, err)
	}

	frontierData, err := json.Marshal(snapshot.Frontier)
	if err != nil {
		return persistence.NewSnapshotError("save", snapshot.ExecutionID, err)
	}

	query := `
		INSERT INTO snapshots (execution_id, workflow, context, frontier, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (execution_id) DO UPDATE SET
			workflow = EXCLUDED.workflow,
			context = EXCLUDED.context,
			frontier = EXCLUDED.frontier,
			created_at = EXCLUDED.created_at
	`

	_, err = r.db.ExecContext(ctx, query,
		snapshot.ExecutionID,
		[]byte(snapshot.Workflow),
		contextData,
		frontierData,
		snapshot.CreatedAt,
	)
	if err != nil {
		return persistence.NewSnapshotError("save", snapshot.ExecutionID, err)
	}

	return nil
}

func (r *Repository) LoadSnapshot(ctx context.Context, executionID string) (*models.Snapshot, error) {
	query := `
		SELECT execution_id, workflow, context, frontier, created_at
		FROM snapshots
		WHERE execution_id = $1
	`

	snapshot, err := scanSnapshot(r.db.QueryRowContext(ctx, query, executionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewSnapshotError("load", executionID, persistence.ErrSnapshotNotFound)
		}

		return nil, persistence.NewSnapshotError("load", executionID, err)
	}

	return snapshot, nil
}

func (r *Repository) DeleteSnapshot(ctx context.Context, executionID string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM snapshots WHERE execution_id = $1", executionID)
	if err != nil {
		return persistence.NewSnapshotError("delete", executionID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewSnapshotError("delete", executionID, err)
	}

	if affected == 0 {
		return persistence.NewSnapshotError("delete", executionID, persistence.ErrSnapshotNotFound)
	}

	return nil
}

func (r *Repository) ListSnapshots(ctx context.Context) ([]*models.Snapshot, error) {
	query := `
		SELECT execution_id, workflow, context, frontier, created_at
		FROM snapshots
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, persistence.NewSnapshotError("list", "", err)
	}
	defer func() { _ = rows.Close() }()

	snapshots := make([]*models.Snapshot, 0)

	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, persistence.NewSnapshotError("list", "", err)
		}

		snapshots = append(snapshots, snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewSnapshotError("list", "", err)
	}

	return snapshots, nil
}

// HealthCheck verifies the database connection is healthy.
func (r *Repository) HealthCheck(ctx context.Context) error {
	err := r.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (r *Repository) Close(ctx context.Context) error {
	if r.db != nil {
		err := r.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*models.Snapshot, error) {
	var (
		snapshot     models.Snapshot
		workflowData []byte
		contextData  []byte
		frontierData []byte
	)

	err := row.Scan(
		&snapshot.ExecutionID,
		&workflowData,
		&contextData,
		&frontierData,
		&snapshot.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	snapshot.Workflow = json.RawMessage(workflowData)

	if err := json.Unmarshal(contextData, &snapshot.Context); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot context: %w", err)
	}

	if err := json.Unmarshal(frontierData, &snapshot.Frontier); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot frontier: %w", err)
	}

	return &snapshot, nil
}
