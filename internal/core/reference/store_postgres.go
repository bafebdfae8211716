// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reference

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yamdb/internal/platform/dberr"
	"github.com/taibuivan/yamdb/internal/platform/postgres"
)

// PostgresRepository implements [Repository] using a pgxpool.
type PostgresRepository struct {
	db   *pgxpool.Pool
	kind Kind
}

// NewPostgresRepository returns a postgres implementation bound to one taxonomy table.
func NewPostgresRepository(db *pgxpool.Pool, kind Kind) *PostgresRepository {
	return &PostgresRepository{db: db, kind: kind}
}

func (repository *PostgresRepository) columns() string {
	return strings.Join(repository.kind.Table.Columns(), ", ")
}

/*
List retrieves one page of terms ordered by name.

Description: The total is computed with a window function alongside the page.

Parameters:
  - context: context.Context
  - filter: TermFilter

Returns:
  - []*Term: Page items
  - int: Total matching count
  - error: Database execution or scanning errors
*/
func (repository *PostgresRepository) List(context context.Context, filter TermFilter) ([]*Term, int, error) {
	table := repository.kind.Table

	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(fmt.Sprintf(`SELECT %s, COUNT(*) OVER() AS total_count FROM %s WHERE 1=1`,
		repository.columns(), table.Table))

	// Search Query Filtering
	if filter.Search != "" {
		queryBuilder.WriteString(fmt.Sprintf(` AND %s ILIKE $%d ESCAPE '\'`, table.Name, argID))
		args = append(args, postgres.ContainsPattern(filter.Search))
		argID++
	}

	queryBuilder.WriteString(fmt.Sprintf(` ORDER BY %s ASC, %s ASC LIMIT $%d OFFSET $%d`, table.Name, table.Slug, argID, argID+1))
	args = append(args, filter.Limit, filter.Offset)

	rows, err := repository.db.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, repository.kind.Resource)
	}
	defer rows.Close()

	var (
		terms []*Term
		total int
	)
	for rows.Next() {
		term := &Term{}
		if err := rows.Scan(&term.ID, &term.Name, &term.Slug, &total); err != nil {
			return nil, 0, dberr.Wrap(err, repository.kind.Resource)
		}
		terms = append(terms, term)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, repository.kind.Resource)
	}

	return terms, total, nil
}

// FindBySlug performs a direct lookup on the unique slug.
func (repository *PostgresRepository) FindBySlug(context context.Context, slug string) (*Term, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		repository.columns(), repository.kind.Table.Table, repository.kind.Table.Slug)

	term := &Term{}
	err := repository.db.QueryRow(context, query, slug).Scan(&term.ID, &term.Name, &term.Slug)
	if err != nil {
		return nil, dberr.Wrap(err, repository.kind.Resource)
	}

	return term, nil
}

// FindBySlugs resolves a batch of slugs in one round trip.
func (repository *PostgresRepository) FindBySlugs(context context.Context, slugs []string) ([]*Term, error) {
	if len(slugs) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ANY($1)`,
		repository.columns(), repository.kind.Table.Table, repository.kind.Table.Slug)

	rows, err := repository.db.Query(context, query, slugs)
	if err != nil {
		return nil, dberr.Wrap(err, repository.kind.Resource)
	}

	terms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Term, error) {
		term := &Term{}
		err := row.Scan(&term.ID, &term.Name, &term.Slug)
		return term, err
	})
	if err != nil {
		return nil, dberr.Wrap(err, repository.kind.Resource)
	}

	return terms, nil
}

// Create inserts a new term.
func (repository *PostgresRepository) Create(context context.Context, term *Term) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3)`,
		repository.kind.Table.Table, repository.columns())

	if _, err := repository.db.Exec(context, query, term.ID, term.Name, term.Slug); err != nil {
		return dberr.Wrap(err, repository.kind.Resource)
	}

	return nil
}

// Delete removes a term; title links are cleared by the foreign keys.
func (repository *PostgresRepository) Delete(context context.Context, slug string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, repository.kind.Table.Table, repository.kind.Table.Slug)

	tag, err := repository.db.Exec(context, query, slug)
	if err != nil {
		return dberr.Wrap(err, repository.kind.Resource)
	}

	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, repository.kind.Resource)
	}

	return nil
}
