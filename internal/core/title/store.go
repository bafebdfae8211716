// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package title

import "context"

// # Title Data Access

// Repository defines the data access contract for titles.
type Repository interface {

	/*
		List retrieves a filtered and paginated list of titles.

		Parameters:
		  - context: context.Context
		  - filter: Filter

		Returns:
		  - []*Title: Hydrated titles with category, genres and rating
		  - int: Total matching count
		  - error: Database execution errors
	*/
	List(context context.Context, filter Filter) ([]*Title, int, error)

	/*
		FindByID retrieves one title with its category, genres and rating.

		Returns:
		  - *Title: Hydrated entity
		  - error: apperr.NotFound if absent
	*/
	FindByID(context context.Context, id string) (*Title, error)

	/*
		Create persists a title and its genre links atomically.

		Parameters:
		  - context: context.Context
		  - title: *Title (CategoryID already resolved)
		  - genreIDs: []string

		Returns:
		  - error: Storage failures
	*/
	Create(context context.Context, title *Title, genreIDs []string) error

	/*
		Update overwrites the scalar columns and, when genreIDs is non-nil,
		replaces the genre links in the same transaction.

		Returns:
		  - error: apperr.NotFound or storage failures
	*/
	Update(context context.Context, title *Title, genreIDs []string) error

	// Delete removes a title; its reviews and comments cascade.
	Delete(context context.Context, id string) error
}
