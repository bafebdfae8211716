// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reference

import "context"

// # Reference Data Access

// Repository defines the data access contract for one taxonomy table.
type Repository interface {

	/*
		List retrieves one page of terms ordered by name.

		Parameters:
		  - context: context.Context
		  - filter: TermFilter

		Returns:
		  - []*Term: Page items
		  - int: Total matching count for pagination metadata
		  - error: Database retrieval failures
	*/
	List(context context.Context, filter TermFilter) ([]*Term, int, error)

	/*
		FindBySlug retrieves a term using its URL identifier.

		Returns:
		  - *Term: Hydrated entity
		  - error: apperr.NotFound if missing
	*/
	FindBySlug(context context.Context, slug string) (*Term, error)

	// FindBySlugs returns the terms matching any of the slugs; unknown slugs are skipped.
	FindBySlugs(context context.Context, slugs []string) ([]*Term, error)

	// Create persists a new term. A taken slug is a ValidationError.
	Create(context context.Context, term *Term) error

	// Delete removes a term by slug.
	Delete(context context.Context, slug string) error
}
