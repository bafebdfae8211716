// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserFilter narrows a user listing.
type UserFilter struct {
	// Search matches usernames containing the term, case-insensitively.
	Search string
	Limit  int
	Offset int
}

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByUsername returns the account with the given username.

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByUsername(context context.Context, username string) (*User, error)

	// ExistsByUsername reports whether the username is taken.
	ExistsByUsername(context context.Context, username string) (bool, error)

	// ExistsByEmail reports whether the email is registered.
	ExistsByEmail(context context.Context, email string) (bool, error)

	/*
		Create persists a brand-new user account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures (unique violations become ValidationError)
	*/
	Create(context context.Context, user *User) error

	/*
		Update persists every mutable column of the account.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	Update(context context.Context, user *User) error

	// Delete removes the account and, by cascade, its content.
	Delete(context context.Context, id string) error

	// List returns one page of accounts ordered by username, and the total count.
	List(context context.Context, filter UserFilter) ([]*User, int, error)
}

// # Confirmation Data Access

// ConfirmationRepository stores signup confirmation codes.
type ConfirmationRepository interface {

	// Create persists a new confirmation.
	Create(context context.Context, confirmation *Confirmation) error

	/*
		Latest returns the most recently issued confirmation of a user.

		Returns:
		  - *Confirmation: Hydrated entity
		  - error: apperr.NotFound when the user never received a code
	*/
	Latest(context context.Context, userID string) (*Confirmation, error)

	// DigestExists reports whether any stored confirmation carries the digest.
	DigestExists(context context.Context, digest string) (bool, error)

	// MarkUsed records the time of a successful exchange.
	MarkUsed(context context.Context, id string, usedAt time.Time) error
}

// # Volatile Data Access

// AttemptLimiter counts failed code exchanges per username.
type AttemptLimiter interface {

	// Failures returns the failures recorded in the current window and the
	// time left before the window resets.
	Failures(context context.Context, username string) (int, time.Duration, error)

	// RecordFailure increments the counter, opening a window of the given
	// length on the first failure.
	RecordFailure(context context.Context, username string, window time.Duration) (int, error)

	// Reset clears the counter after a successful exchange.
	Reset(context context.Context, username string) error
}
