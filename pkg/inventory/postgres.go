// Package inventory supplies entity and relationship data to the graph
// builder. The persistence layer that owns this data is external; the
// sources here only read its folder-scoped tables.
package inventory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aegisops/secgraph/pkg/graph"
)

// PostgresSource reads entities and relationships from the organization
// database. It is safe for concurrent use; the pool handles connection
// lifecycle.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource connects a source to the given database URL.
func NewPostgresSource(ctx context.Context, databaseURL string) (*PostgresSource, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return &PostgresSource{pool: pool}, nil
}

// NewPostgresSourceFromPool wraps an existing pool.
func NewPostgresSourceFromPool(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

// Close releases the underlying pool.
func (s *PostgresSource) Close() {
	s.pool.Close()
}

// Ping verifies database connectivity, for health checks.
func (s *PostgresSource) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// FolderExists reports whether the folder is present.
func (s *PostgresSource) FolderExists(ctx context.Context, folderID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM folders WHERE id = $1)`, folderID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("querying folder %s: %w", folderID, err)
	}
	return exists, nil
}

// Entities returns all graph entities declared in a folder.
func (s *PostgresSource) Entities(ctx context.Context, folderID string) ([]graph.Entity, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, entity_type, COALESCE(intrinsic_weight, 0),
		        COALESCE(source_type, ''), COALESCE(source_id, '')
		 FROM entities
		 WHERE folder_id = $1
		 ORDER BY id`, folderID)
	if err != nil {
		return nil, fmt.Errorf("querying entities for folder %s: %w", folderID, err)
	}
	defer rows.Close()

	var entities []graph.Entity
	for rows.Next() {
		var e graph.Entity
		if err := rows.Scan(&e.ID, &e.Name, &e.Type, &e.IntrinsicWeight, &e.SourceType, &e.SourceID); err != nil {
			return nil, fmt.Errorf("scanning entity row: %w", err)
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading entity rows: %w", err)
	}
	return entities, nil
}

// Relationships returns all declared relationships in a folder, in stable
// insertion order.
func (s *PostgresSource) Relationships(ctx context.Context, folderID string) ([]graph.Relationship, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT source_id, target_id, relation_type, weight
		 FROM relationships
		 WHERE folder_id = $1
		 ORDER BY created_at, source_id, target_id`, folderID)
	if err != nil {
		return nil, fmt.Errorf("querying relationships for folder %s: %w", folderID, err)
	}
	defer rows.Close()

	var rels []graph.Relationship
	for rows.Next() {
		var r graph.Relationship
		if err := rows.Scan(&r.SourceID, &r.TargetID, &r.RelationType, &r.Weight); err != nil {
			return nil, fmt.Errorf("scanning relationship row: %w", err)
		}
		rels = append(rels, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading relationship rows: %w", err)
	}
	return rels, nil
}
