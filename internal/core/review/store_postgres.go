// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package review

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yamdb/internal/platform/database/schema"
	"github.com/taibuivan/yamdb/internal/platform/dberr"
)

// # Reviews

// PostgresReviewRepository implements [ReviewRepository] using a pgxpool.
type PostgresReviewRepository struct {
	db *pgxpool.Pool
}

// NewReviewRepository returns a fully wired postgres implementation.
func NewReviewRepository(db *pgxpool.Pool) *PostgresReviewRepository {
	return &PostgresReviewRepository{db: db}
}

// selectReview joins the author so the username is available for rendering.
var selectReview = fmt.Sprintf(`
	SELECT r.%s, r.%s, r.%s, r.%s, r.%s, r.%s, a.%s
	FROM %s r
	JOIN %s a ON a.%s = r.%s`,
	schema.SocialReview.ID,
	schema.SocialReview.TitleID,
	schema.SocialReview.UserID,
	schema.SocialReview.Text,
	schema.SocialReview.Score,
	schema.SocialReview.PubDate,
	schema.UserAccount.Username,
	schema.SocialReview.Table,
	schema.UserAccount.Table,
	schema.UserAccount.ID, schema.SocialReview.UserID,
)

// scanReview hydrates a review; leading destinations receive any prefixed columns.
func scanReview(row pgx.Row, extra ...any) (*Review, error) {
	var review Review
	destinations := append(extra,
		&review.ID,
		&review.TitleID,
		&review.AuthorID,
		&review.Text,
		&review.Score,
		&review.PubDate,
		&review.Author,
	)

	if err := row.Scan(destinations...); err != nil {
		return nil, err
	}
	return &review, nil
}

// TitleExists reports whether the parent title is present.
func (repository *PostgresReviewRepository) TitleExists(context context.Context, titleID string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`, schema.CoreTitle.Table, schema.CoreTitle.ID)

	var exists bool
	if err := repository.db.QueryRow(context, query, titleID).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "Title")
	}
	return exists, nil
}

/*
List retrieves one page of reviews of a title.

Parameters:
  - context: context.Context
  - titleID: string
  - limit: int
  - offset: int

Returns:
  - []*Review: Page items, newest first
  - int: Total count for the title
  - error: Database execution errors
*/
func (repository *PostgresReviewRepository) List(context context.Context, titleID string, limit, offset int) ([]*Review, int, error) {
	query := strings.Replace(selectReview, "SELECT", "SELECT COUNT(*) OVER() AS total_count,", 1) +
		fmt.Sprintf(" WHERE r.%s = $1 ORDER BY r.%s DESC, r.%s DESC LIMIT $2 OFFSET $3",
			schema.SocialReview.TitleID, schema.SocialReview.PubDate, schema.SocialReview.ID)

	rows, err := repository.db.Query(context, query, titleID, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Review")
	}
	defer rows.Close()

	var (
		reviews []*Review
		total   int
	)
	for rows.Next() {
		review, err := scanReview(rows, &total)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "Review")
		}
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "Review")
	}

	return reviews, total, nil
}

// FindByID retrieves a review under its title.
func (repository *PostgresReviewRepository) FindByID(context context.Context, titleID, id string) (*Review, error) {
	query := selectReview + fmt.Sprintf(" WHERE r.%s = $1 AND r.%s = $2", schema.SocialReview.ID, schema.SocialReview.TitleID)

	review, err := scanReview(repository.db.QueryRow(context, query, id, titleID))
	if err != nil {
		return nil, dberr.Wrap(err, "Review")
	}
	return review, nil
}

// ExistsByAuthor reports whether the user already reviewed the title.
func (repository *PostgresReviewRepository) ExistsByAuthor(context context.Context, titleID, userID string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)`,
		schema.SocialReview.Table, schema.SocialReview.TitleID, schema.SocialReview.UserID)

	var exists bool
	if err := repository.db.QueryRow(context, query, titleID, userID).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "Review")
	}
	return exists, nil
}

// Create persists a new review. The unique (user, title) constraint backs the service check.
func (repository *PostgresReviewRepository) Create(context context.Context, review *Review) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6)`,
		schema.SocialReview.Table,
		strings.Join(schema.SocialReview.Columns(), ", "),
	)

	_, err := repository.db.Exec(context, query,
		review.ID,
		review.TitleID,
		review.AuthorID,
		review.Text,
		review.Score,
		review.PubDate,
	)
	if err != nil {
		return dberr.Wrap(err, "Review")
	}
	return nil
}

// Update overwrites text and score.
func (repository *PostgresReviewRepository) Update(context context.Context, review *Review) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $3, %s = $4 WHERE %s = $1 AND %s = $2`,
		schema.SocialReview.Table,
		schema.SocialReview.Text,
		schema.SocialReview.Score,
		schema.SocialReview.ID,
		schema.SocialReview.TitleID,
	)

	tag, err := repository.db.Exec(context, query, review.ID, review.TitleID, review.Text, review.Score)
	if err != nil {
		return dberr.Wrap(err, "Review")
	}
	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "Review")
	}
	return nil
}

// Delete removes a review; its comments cascade.
func (repository *PostgresReviewRepository) Delete(context context.Context, titleID, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.SocialReview.Table, schema.SocialReview.ID, schema.SocialReview.TitleID)

	tag, err := repository.db.Exec(context, query, id, titleID)
	if err != nil {
		return dberr.Wrap(err, "Review")
	}
	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "Review")
	}
	return nil
}

// # Comments

// PostgresCommentRepository implements [CommentRepository] using a pgxpool.
type PostgresCommentRepository struct {
	db *pgxpool.Pool
}

// NewCommentRepository returns a fully wired postgres implementation.
func NewCommentRepository(db *pgxpool.Pool) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

var selectComment = fmt.Sprintf(`
	SELECT c.%s, c.%s, c.%s, c.%s, c.%s, a.%s
	FROM %s c
	JOIN %s a ON a.%s = c.%s`,
	schema.SocialComment.ID,
	schema.SocialComment.ReviewID,
	schema.SocialComment.UserID,
	schema.SocialComment.Text,
	schema.SocialComment.PubDate,
	schema.UserAccount.Username,
	schema.SocialComment.Table,
	schema.UserAccount.Table,
	schema.UserAccount.ID, schema.SocialComment.UserID,
)

func scanComment(row pgx.Row, extra ...any) (*Comment, error) {
	var comment Comment
	destinations := append(extra,
		&comment.ID,
		&comment.ReviewID,
		&comment.AuthorID,
		&comment.Text,
		&comment.PubDate,
		&comment.Author,
	)

	if err := row.Scan(destinations...); err != nil {
		return nil, err
	}
	return &comment, nil
}

// List retrieves one page of comments of a review, oldest first.
func (repository *PostgresCommentRepository) List(context context.Context, reviewID string, limit, offset int) ([]*Comment, int, error) {
	query := strings.Replace(selectComment, "SELECT", "SELECT COUNT(*) OVER() AS total_count,", 1) +
		fmt.Sprintf(" WHERE c.%s = $1 ORDER BY c.%s ASC, c.%s ASC LIMIT $2 OFFSET $3",
			schema.SocialComment.ReviewID, schema.SocialComment.PubDate, schema.SocialComment.ID)

	rows, err := repository.db.Query(context, query, reviewID, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Comment")
	}
	defer rows.Close()

	var (
		comments []*Comment
		total    int
	)
	for rows.Next() {
		comment, err := scanComment(rows, &total)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "Comment")
		}
		comments = append(comments, comment)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "Comment")
	}

	return comments, total, nil
}

// FindByID retrieves a comment under its review.
func (repository *PostgresCommentRepository) FindByID(context context.Context, reviewID, id string) (*Comment, error) {
	query := selectComment + fmt.Sprintf(" WHERE c.%s = $1 AND c.%s = $2", schema.SocialComment.ID, schema.SocialComment.ReviewID)

	comment, err := scanComment(repository.db.QueryRow(context, query, id, reviewID))
	if err != nil {
		return nil, dberr.Wrap(err, "Comment")
	}
	return comment, nil
}

// Create persists a new comment.
func (repository *PostgresCommentRepository) Create(context context.Context, comment *Comment) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5)`,
		schema.SocialComment.Table,
		strings.Join(schema.SocialComment.Columns(), ", "),
	)

	_, err := repository.db.Exec(context, query,
		comment.ID,
		comment.ReviewID,
		comment.AuthorID,
		comment.Text,
		comment.PubDate,
	)
	if err != nil {
		return dberr.Wrap(err, "Comment")
	}
	return nil
}

// Update overwrites the comment text.
func (repository *PostgresCommentRepository) Update(context context.Context, comment *Comment) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $3 WHERE %s = $1 AND %s = $2`,
		schema.SocialComment.Table,
		schema.SocialComment.Text,
		schema.SocialComment.ID,
		schema.SocialComment.ReviewID,
	)

	tag, err := repository.db.Exec(context, query, comment.ID, comment.ReviewID, comment.Text)
	if err != nil {
		return dberr.Wrap(err, "Comment")
	}
	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "Comment")
	}
	return nil
}

// Delete removes a comment.
func (repository *PostgresCommentRepository) Delete(context context.Context, reviewID, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.SocialComment.Table, schema.SocialComment.ID, schema.SocialComment.ReviewID)

	tag, err := repository.db.Exec(context, query, id, reviewID)
	if err != nil {
		return dberr.Wrap(err, "Comment")
	}
	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "Comment")
	}
	return nil
}
