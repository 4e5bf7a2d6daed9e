package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"merry/internal/content"
	"merry/internal/domain"
	"merry/internal/domain/models"
	"merry/internal/domain/repositories"
)

// PostgresVersionRepository implements the VersionRepository interface.
// The versions table carries UNIQUE (document_id, version); that constraint
// is the source of truth for the one-writer-wins rule on concurrent appends.
type PostgresVersionRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewVersionRepository creates a new version repository
func NewVersionRepository(config *RepositoryConfig) repositories.VersionRepository {
	return &PostgresVersionRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const versionColumns = "id, document_id, version, parent_version, snapshot, diff, author, created_at"

// Append inserts an immutable version row. A duplicate (document_id,
// version) pair is a ConflictError: the losing writer is rejected, never
// silently renumbered.
func (r *PostgresVersionRepository) Append(ctx context.Context, v *models.Version) error {
	snapshotJSON, err := content.Canonical(v.Snapshot)
	if err != nil {
		return err
	}

	var diffJSON []byte
	if v.Diff != nil {
		diffJSON, err = json.Marshal(v.Diff)
		if err != nil {
			return fmt.Errorf("marshal diff: %w", err)
		}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, document_id, version, parent_version, snapshot, diff, author, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.tables.Versions)

	executor := GetExecutor(ctx, r.pool)
	_, err = executor.Exec(ctx, query,
		v.ID,
		v.DocumentID,
		v.Version,
		v.ParentVersion,
		snapshotJSON,
		diffJSON,
		v.Author,
		v.CreatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("version %d already exists for document %s", v.Version, v.DocumentID),
				ResourceType: "version",
				ResourceID:   v.DocumentID,
			}
		}
		return fmt.Errorf("append version: %w", err)
	}

	return nil
}

// History returns all versions of a document, ascending by version number.
func (r *PostgresVersionRepository) History(ctx context.Context, documentID string) ([]*models.Version, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE document_id = $1
		ORDER BY version ASC
	`, versionColumns, r.tables.Versions)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("version history: %w", err)
	}
	defer rows.Close()

	versions := make([]*models.Version, 0)
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("version history: %w", err)
	}

	return versions, nil
}

// AtVersion returns one specific version of a document.
func (r *PostgresVersionRepository) AtVersion(ctx context.Context, documentID string, version int) (*models.Version, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE document_id = $1 AND version = $2
	`, versionColumns, r.tables.Versions)

	executor := GetExecutor(ctx, r.pool)
	v, err := scanVersion(executor.QueryRow(ctx, query, documentID, version))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("version %d of document %s: %w", version, documentID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get version: %w", err)
	}

	return v, nil
}

// DeleteByDocument removes all versions of a document. Runs inside the
// document-delete transaction so the cascade is atomic.
func (r *PostgresVersionRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE document_id = $1`, r.tables.Versions)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, documentID); err != nil {
		return fmt.Errorf("delete versions: %w", err)
	}

	return nil
}

func scanVersion(row rowScanner) (*models.Version, error) {
	var (
		v            models.Version
		snapshotJSON []byte
		diffJSON     []byte
	)
	err := row.Scan(
		&v.ID,
		&v.DocumentID,
		&v.Version,
		&v.ParentVersion,
		&snapshotJSON,
		&diffJSON,
		&v.Author,
		&v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	v.Snapshot, err = content.Decode(snapshotJSON)
	if err != nil {
		return nil, err
	}
	if len(diffJSON) > 0 {
		if err := json.Unmarshal(diffJSON, &v.Diff); err != nil {
			return nil, fmt.Errorf("decode diff: %w", err)
		}
	}

	return &v, nil
}
