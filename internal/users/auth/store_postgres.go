// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yamdb/internal/platform/database/schema"
	"github.com/taibuivan/yamdb/internal/platform/dberr"
	"github.com/taibuivan/yamdb/internal/platform/postgres"
	"github.com/taibuivan/yamdb/internal/platform/sec"
)

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// userSelect is the shared projection for account lookups.
var userSelect = fmt.Sprintf(`SELECT %s FROM %s`,
	strings.Join(schema.UserAccount.Columns(), ", "),
	schema.UserAccount.Table,
)

// scanUser hydrates a [User] from a row in [schema.UserAccountTable.Columns] order.
func scanUser(row pgx.Row) (*User, error) {
	var (
		user User
		role string
	)

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.Bio,
		&role,
		&user.IsStaff,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	parsed, err := sec.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("postgres_user_repo_role_invalid: %w", err)
	}
	user.Role = parsed

	return &user, nil
}

/*
FindByID retrieves a user record by its primary key.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	query := userSelect + fmt.Sprintf(` WHERE %s = $1`, schema.UserAccount.ID)

	user, err := scanUser(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}

	return user, nil
}

/*
FindByUsername retrieves a user record by their unique username.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	query := userSelect + fmt.Sprintf(` WHERE %s = $1`, schema.UserAccount.Username)

	user, err := scanUser(repository.pool.QueryRow(context, query, username))
	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}

	return user, nil
}

// ExistsByUsername reports whether the username is taken.
func (repository *PostgresUserRepository) ExistsByUsername(context context.Context, username string) (bool, error) {
	return repository.exists(context, schema.UserAccount.Username, username)
}

// ExistsByEmail reports whether the email is registered.
func (repository *PostgresUserRepository) ExistsByEmail(context context.Context, email string) (bool, error) {
	return repository.exists(context, schema.UserAccount.Email, email)
}

func (repository *PostgresUserRepository) exists(context context.Context, column, value string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`, schema.UserAccount.Table, column)

	var found bool
	if err := repository.pool.QueryRow(context, query, value).Scan(&found); err != nil {
		return false, dberr.Wrap(err, "User")
	}

	return found, nil
}

/*
Create persists a new user record into the users.account table.

Description: Timestamps are initialized when not provided.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: Unique violations as ValidationError, or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		schema.UserAccount.Table,
		strings.Join(schema.UserAccount.Columns(), ", "),
	)

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Bio,
		user.Role.String(),
		user.IsStaff,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "User")
	}

	return nil
}

/*
Update overwrites every mutable column of an account.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: apperr.NotFound, unique violations or connectivity errors
*/
func (repository *PostgresUserRepository) Update(context context.Context, user *User) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8, %s = $9
		WHERE %s = $1`,
		schema.UserAccount.Table,
		schema.UserAccount.Username,
		schema.UserAccount.Email,
		schema.UserAccount.FirstName,
		schema.UserAccount.LastName,
		schema.UserAccount.Bio,
		schema.UserAccount.Role,
		schema.UserAccount.IsStaff,
		schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID,
	)

	user.UpdatedAt = time.Now().UTC()

	tag, err := repository.pool.Exec(context, query,
		user.ID,
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Bio,
		user.Role.String(),
		user.IsStaff,
		user.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "User")
	}

	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "User")
	}

	return nil
}

// Delete removes the account; reviews, comments and confirmations cascade.
func (repository *PostgresUserRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.UserAccount.Table, schema.UserAccount.ID)

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "User")
	}

	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "User")
	}

	return nil
}

/*
List returns one page of accounts ordered by username.

Description: The total is computed with a window function so a single round
trip serves both the page and the count.

Parameters:
  - context: context.Context
  - filter: UserFilter

Returns:
  - []*User: Page items
  - int: Total matching rows
  - error: Database errors
*/
func (repository *PostgresUserRepository) List(context context.Context, filter UserFilter) ([]*User, int, error) {
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(fmt.Sprintf(`SELECT %s, COUNT(*) OVER() AS total_count FROM %s WHERE 1=1`,
		strings.Join(schema.UserAccount.Columns(), ", "),
		schema.UserAccount.Table,
	))

	// Search Query Filtering
	if filter.Search != "" {
		queryBuilder.WriteString(fmt.Sprintf(` AND %s ILIKE $%d ESCAPE '\'`, schema.UserAccount.Username, argID))
		args = append(args, postgres.ContainsPattern(filter.Search))
		argID++
	}

	queryBuilder.WriteString(fmt.Sprintf(` ORDER BY %s ASC LIMIT $%d OFFSET $%d`, schema.UserAccount.Username, argID, argID+1))
	args = append(args, filter.Limit, filter.Offset)

	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "User")
	}
	defer rows.Close()

	var (
		users []*User
		total int
	)

	for rows.Next() {
		var (
			user User
			role string
		)

		err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.FirstName,
			&user.LastName,
			&user.Bio,
			&role,
			&user.IsStaff,
			&user.CreatedAt,
			&user.UpdatedAt,
			&total,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "User")
		}

		if user.Role, err = sec.ParseRole(role); err != nil {
			return nil, 0, fmt.Errorf("postgres_user_repo_role_invalid: %w", err)
		}

		users = append(users, &user)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "User")
	}

	return users, total, nil
}

// # Confirmation Repository

// PostgresConfirmationRepository implements ConfirmationRepository using pgx.
type PostgresConfirmationRepository struct {
	pool *pgxpool.Pool
}

// NewConfirmationRepository creates a new PostgreSQL implementation of the ConfirmationRepository.
func NewConfirmationRepository(pool *pgxpool.Pool) *PostgresConfirmationRepository {
	return &PostgresConfirmationRepository{pool: pool}
}

// Create persists a new confirmation digest.
func (repository *PostgresConfirmationRepository) Create(context context.Context, confirmation *Confirmation) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)`,
		schema.UserConfirmation.Table,
		schema.UserConfirmation.ID,
		schema.UserConfirmation.UserID,
		schema.UserConfirmation.CodeDigest,
		schema.UserConfirmation.CreatedAt,
	)

	if confirmation.CreatedAt.IsZero() {
		confirmation.CreatedAt = time.Now().UTC()
	}

	_, err := repository.pool.Exec(context, query,
		confirmation.ID,
		confirmation.UserID,
		confirmation.CodeDigest,
		confirmation.CreatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "Confirmation")
	}

	return nil
}

/*
Latest returns the most recent confirmation issued to a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *Confirmation: Hydrated entity
  - error: apperr.NotFound when no code was ever issued
*/
func (repository *PostgresConfirmationRepository) Latest(context context.Context, userID string) (*Confirmation, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s = $1
		ORDER BY %s DESC, %s DESC
		LIMIT 1`,
		strings.Join(schema.UserConfirmation.Columns(), ", "),
		schema.UserConfirmation.Table,
		schema.UserConfirmation.UserID,
		schema.UserConfirmation.CreatedAt,
		schema.UserConfirmation.ID,
	)

	var confirmation Confirmation
	err := repository.pool.QueryRow(context, query, userID).Scan(
		&confirmation.ID,
		&confirmation.UserID,
		&confirmation.CodeDigest,
		&confirmation.CreatedAt,
		&confirmation.UsedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Confirmation")
	}

	return &confirmation, nil
}

// DigestExists reports whether any stored confirmation carries the digest.
func (repository *PostgresConfirmationRepository) DigestExists(context context.Context, digest string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`,
		schema.UserConfirmation.Table,
		schema.UserConfirmation.CodeDigest,
	)

	var found bool
	if err := repository.pool.QueryRow(context, query, digest).Scan(&found); err != nil {
		return false, dberr.Wrap(err, "Confirmation")
	}

	return found, nil
}

// MarkUsed stamps the first successful exchange; later exchanges keep the original time.
func (repository *PostgresConfirmationRepository) MarkUsed(context context.Context, id string, usedAt time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = COALESCE(%s, $2) WHERE %s = $1`,
		schema.UserConfirmation.Table,
		schema.UserConfirmation.UsedAt,
		schema.UserConfirmation.UsedAt,
		schema.UserConfirmation.ID,
	)

	if _, err := repository.pool.Exec(context, query, id, usedAt); err != nil {
		return dberr.Wrap(err, "Confirmation")
	}

	return nil
}
