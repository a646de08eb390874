// Package indexmgr implements the index manager (C5): create/open/exists/
// list/delete/merge over named indexes, each backed by an inverted-index
// engine index plus a catalog row tracking its schema and sort_by. Writer
// creation is serialized per index via a distributed lock.
package indexmgr

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cheminee/search-engine/pkg/errors"
)

// Entry is the catalog record for one named index.
type Entry struct {
	Name      string
	Schema    string
	SortBy    string
	CreatedAt time.Time
}

// Catalog durably tracks index metadata (name, schema, sort_by, created_at)
// alongside the engine's own directory-per-index layout, so IndexManager can
// answer Exists/List/Get without querying the search engine.
type Catalog interface {
	Create(ctx context.Context, name, schema, sortBy string) error
	Get(ctx context.Context, name string) (Entry, error)
	Exists(ctx context.Context, name string) (bool, error)
	List(ctx context.Context) ([]Entry, error)
	Delete(ctx context.Context, name string) error
}

// pgCatalog is a pgx-backed Catalog implementation. The backing table is
// created by the migrations under migrations/postgres (see migrator.go).
type pgCatalog struct {
	pool *pgxpool.Pool
}

// NewPostgresCatalog constructs a Catalog over an existing connection pool.
func NewPostgresCatalog(pool *pgxpool.Pool) Catalog {
	return &pgCatalog{pool: pool}
}

func (c *pgCatalog) Create(ctx context.Context, name, schema, sortBy string) error {
	_, err := c.pool.Exec(ctx,
		`INSERT INTO search_indexes (name, schema_name, sort_by, created_at) VALUES ($1, $2, $3, now())`,
		name, schema, sortBy)
	if err != nil {
		return errors.Wrap(err, errors.CodeStorage, "catalog: insert index row failed")
	}
	return nil
}

func (c *pgCatalog) Get(ctx context.Context, name string) (Entry, error) {
	var e Entry
	err := c.pool.QueryRow(ctx,
		`SELECT name, schema_name, sort_by, created_at FROM search_indexes WHERE name = $1`,
		name).Scan(&e.Name, &e.Schema, &e.SortBy, &e.CreatedAt)
	if err == pgx.ErrNoRows {
		return Entry{}, errors.IndexNotFound(name)
	}
	if err != nil {
		return Entry{}, errors.Wrap(err, errors.CodeStorage, "catalog: lookup index row failed")
	}
	return e, nil
}

func (c *pgCatalog) Exists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := c.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM search_indexes WHERE name = $1)`, name).Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, errors.CodeStorage, "catalog: exists check failed")
	}
	return exists, nil
}

func (c *pgCatalog) List(ctx context.Context) ([]Entry, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT name, schema_name, sort_by, created_at FROM search_indexes ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorage, "catalog: list query failed")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.Schema, &e.SortBy, &e.CreatedAt); err != nil {
			return nil, errors.Wrap(err, errors.CodeStorage, "catalog: row scan failed")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeStorage, "catalog: row iteration failed")
	}
	return entries, nil
}

func (c *pgCatalog) Delete(ctx context.Context, name string) error {
	tag, err := c.pool.Exec(ctx, `DELETE FROM search_indexes WHERE name = $1`, name)
	if err != nil {
		return errors.Wrap(err, errors.CodeStorage, "catalog: delete index row failed")
	}
	if tag.RowsAffected() == 0 {
		return errors.IndexNotFound(name)
	}
	return nil
}
