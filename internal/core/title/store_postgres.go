// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package title

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yamdb/internal/core/reference"
	"github.com/taibuivan/yamdb/internal/platform/database/schema"
	"github.com/taibuivan/yamdb/internal/platform/dberr"
	"github.com/taibuivan/yamdb/internal/platform/postgres"
)

// PostgresRepository implements [Repository] using a pgxpool.
//
// # Query Strategy
//
//   - Category: LEFT JOIN, so titles whose category was deleted still list.
//   - Genres: aggregated into a JSON array by a correlated sub-query.
//   - Rating: AVG over the review table at read time.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository returns a fully wired postgres implementation.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// selectTitle is the read projection shared by List and FindByID.
var selectTitle = fmt.Sprintf(`
	SELECT
		t.%s, t.%s, t.%s, t.%s, t.%s, t.%s,
		c.%s, c.%s,
		COALESCE((
			SELECT json_agg(json_build_object('name', g.%s, 'slug', g.%s) ORDER BY g.%s)
			FROM %s g
			JOIN %s tg ON tg.%s = g.%s
			WHERE tg.%s = t.%s
		), '[]') AS genres,
		(SELECT AVG(r.%s)::float8 FROM %s r WHERE r.%s = t.%s) AS rating`,
	schema.CoreTitle.ID,
	schema.CoreTitle.Name,
	schema.CoreTitle.Year,
	schema.CoreTitle.Description,
	schema.CoreTitle.CategoryID,
	schema.CoreTitle.CreatedAt,
	schema.CoreCategory.Name,
	schema.CoreCategory.Slug,
	schema.CoreGenre.Name, schema.CoreGenre.Slug, schema.CoreGenre.Name,
	schema.CoreGenre.Table,
	schema.CoreTitleGenre.Table,
	schema.CoreTitleGenre.GenreID, schema.CoreGenre.ID,
	schema.CoreTitleGenre.TitleID, schema.CoreTitle.ID,
	schema.SocialReview.Score,
	schema.SocialReview.Table,
	schema.SocialReview.TitleID, schema.CoreTitle.ID,
)

// fromTitle joins the category of each title.
var fromTitle = fmt.Sprintf(`
	FROM %s t
	LEFT JOIN %s c ON c.%s = t.%s`,
	schema.CoreTitle.Table,
	schema.CoreCategory.Table,
	schema.CoreCategory.ID, schema.CoreTitle.CategoryID,
)

// scanTitle hydrates a title from the selectTitle projection plus any trailing destinations.
func scanTitle(row pgx.Row, extra ...any) (*Title, error) {
	var (
		title        Title
		categoryName *string
		categorySlug *string
		genresJSON   []byte
		mean         *float64
	)

	destinations := append([]any{
		&title.ID,
		&title.Name,
		&title.Year,
		&title.Description,
		&title.CategoryID,
		&title.CreatedAt,
		&categoryName,
		&categorySlug,
		&genresJSON,
		&mean,
	}, extra...)

	if err := row.Scan(destinations...); err != nil {
		return nil, err
	}

	if categorySlug != nil {
		title.Category = &reference.Term{Name: *categoryName, Slug: *categorySlug}
	}

	if err := json.Unmarshal(genresJSON, &title.Genre); err != nil {
		return nil, fmt.Errorf("postgres: failed to unmarshal genres: %w", err)
	}

	title.Rating = RoundRating(mean)

	return &title, nil
}

/*
List retrieves a filtered and paginated list of titles.

Description: Filters are appended dynamically; genre and category match by
slug through EXISTS and the joined category.

Parameters:
  - context: context.Context
  - filter: Filter

Returns:
  - []*Title: Slice of hydrated titles
  - int: Total count matching filters
  - error: Database execution errors
*/
func (repository *PostgresRepository) List(context context.Context, filter Filter) ([]*Title, int, error) {
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(selectTitle)
	queryBuilder.WriteString(", COUNT(*) OVER() AS total_count")
	queryBuilder.WriteString(fromTitle)
	queryBuilder.WriteString(" WHERE 1=1")

	// Name Filtering
	if filter.Name != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND t.%s ILIKE $%d ESCAPE '\\'", schema.CoreTitle.Name, argID))
		args = append(args, postgres.ContainsPattern(filter.Name))
		argID++
	}

	// Year Filtering
	if filter.Year != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND t.%s = $%d", schema.CoreTitle.Year, argID))
		args = append(args, *filter.Year)
		argID++
	}

	// Category Filtering
	if filter.Category != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND c.%s = $%d", schema.CoreCategory.Slug, argID))
		args = append(args, filter.Category)
		argID++
	}

	// Genre Filtering
	if filter.Genre != "" {
		queryBuilder.WriteString(fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM %s tg JOIN %s g ON g.%s = tg.%s
			WHERE tg.%s = t.%s AND g.%s = $%d)`,
			schema.CoreTitleGenre.Table, schema.CoreGenre.Table,
			schema.CoreGenre.ID, schema.CoreTitleGenre.GenreID,
			schema.CoreTitleGenre.TitleID, schema.CoreTitle.ID,
			schema.CoreGenre.Slug, argID,
		))
		args = append(args, filter.Genre)
		argID++
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY t.%s ASC, t.%s ASC LIMIT $%d OFFSET $%d",
		schema.CoreTitle.Name, schema.CoreTitle.ID, argID, argID+1))
	args = append(args, filter.Limit, filter.Offset)

	rows, err := repository.db.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Title")
	}
	defer rows.Close()

	var (
		titles []*Title
		total  int
	)
	for rows.Next() {
		title, err := scanTitle(rows, &total)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "Title")
		}
		titles = append(titles, title)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "Title")
	}

	return titles, total, nil
}

// FindByID retrieves a single title by primary key.
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Title, error) {
	query := selectTitle + fromTitle + fmt.Sprintf(" WHERE t.%s = $1", schema.CoreTitle.ID)

	title, err := scanTitle(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Title")
	}

	return title, nil
}

/*
Create persists a title and its genre links in one transaction.

Parameters:
  - context: context.Context
  - title: *Title
  - genreIDs: []string

Returns:
  - error: Constraint violations or connectivity errors
*/
func (repository *PostgresRepository) Create(context context.Context, title *Title, genreIDs []string) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6)`,
		schema.CoreTitle.Table,
		strings.Join(schema.CoreTitle.Columns(), ", "),
	)

	err := postgres.WithTx(context, repository.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(context, query,
			title.ID,
			title.Name,
			title.Year,
			title.Description,
			title.CategoryID,
			title.CreatedAt,
		)
		if err != nil {
			return err
		}

		return linkGenres(context, tx, title.ID, genreIDs)
	})
	if err != nil {
		return dberr.Wrap(err, "Title")
	}

	return nil
}

/*
Update overwrites the scalar columns of a title.

Description: A nil genreIDs keeps the existing links; a non-nil slice
replaces them, both inside the same transaction.

Parameters:
  - context: context.Context
  - title: *Title
  - genreIDs: []string

Returns:
  - error: apperr.NotFound or storage failures
*/
func (repository *PostgresRepository) Update(context context.Context, title *Title, genreIDs []string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = $5 WHERE %s = $1`,
		schema.CoreTitle.Table,
		schema.CoreTitle.Name,
		schema.CoreTitle.Year,
		schema.CoreTitle.Description,
		schema.CoreTitle.CategoryID,
		schema.CoreTitle.ID,
	)

	err := postgres.WithTx(context, repository.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(context, query,
			title.ID,
			title.Name,
			title.Year,
			title.Description,
			title.CategoryID,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}

		if genreIDs == nil {
			return nil
		}

		unlink := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.CoreTitleGenre.Table, schema.CoreTitleGenre.TitleID)
		if _, err := tx.Exec(context, unlink, title.ID); err != nil {
			return err
		}

		return linkGenres(context, tx, title.ID, genreIDs)
	})
	if err != nil {
		return dberr.Wrap(err, "Title")
	}

	return nil
}

// Delete removes a title by primary key.
func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.CoreTitle.Table, schema.CoreTitle.ID)

	tag, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "Title")
	}

	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "Title")
	}

	return nil
}

// linkGenres inserts the join rows for a title.
func linkGenres(context context.Context, db postgres.DBTX, titleID string, genreIDs []string) error {
	if len(genreIDs) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s)
		SELECT $1, UNNEST($2::uuid[])
		ON CONFLICT DO NOTHING`,
		schema.CoreTitleGenre.Table,
		schema.CoreTitleGenre.TitleID,
		schema.CoreTitleGenre.GenreID,
	)

	_, err := db.Exec(context, query, titleID, genreIDs)
	return err
}
