package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/tangpeiwen/clipsync/internal/domain"
	"github.com/tangpeiwen/clipsync/internal/ports"
)

// PostgresRepository persists the publish history into Postgres. It is an
// append-only audit: nothing reads it back into the pipeline, and it never
// deduplicates or gates a publish.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.PublishLog = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Record inserts one published-page row.
func (r *PostgresRepository) Record(ctx context.Context, pub domain.Publication) error {
	if r.db == nil {
		return nil
	}

	query, args, err := r.builder.
		Insert("publications").
		Columns("id", "kind", "source", "title", "page_id", "database_id", "tags", "created_at").
		Values(pub.ID, pub.Kind, pub.Source, pub.Title, pub.PageID, pub.DatabaseID, pq.Array(pub.Tags), pub.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert publication: %w", err)
	}

	return nil
}

// Recent returns the latest publications, newest first.
func (r *PostgresRepository) Recent(ctx context.Context, limit int) ([]domain.Publication, error) {
	if r.db == nil {
		return []domain.Publication{}, nil
	}
	if limit <= 0 {
		limit = 20
	}

	query, args, err := r.builder.
		Select("id", "kind", "source", "title", "page_id", "database_id", "tags", "created_at").
		From("publications").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query publications: %w", err)
	}

	result := make([]domain.Publication, 0, limit)
	for rows.Next() {
		var pub domain.Publication
		var tags pq.StringArray
		if err := rows.Scan(&pub.ID, &pub.Kind, &pub.Source, &pub.Title, &pub.PageID, &pub.DatabaseID, &tags, &pub.CreatedAt); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan publication: %w", err)
		}
		pub.Tags = tags
		result = append(result, pub)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}
