// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package review

import "context"

// # Review Data Access

// ReviewRepository defines the data access contract for reviews.
//
// Every lookup is scoped by the owning title.
type ReviewRepository interface {

	// TitleExists reports whether the parent title is present.
	TitleExists(context context.Context, titleID string) (bool, error)

	/*
		List retrieves one page of reviews of a title, newest first.

		Returns:
		  - []*Review: Page items with the author username
		  - int: Total review count of the title
		  - error: Database execution errors
	*/
	List(context context.Context, titleID string, limit, offset int) ([]*Review, int, error)

	// FindByID returns apperr.NotFound also when the review belongs to another title.
	FindByID(context context.Context, titleID, id string) (*Review, error)

	// ExistsByAuthor reports whether userID already reviewed titleID.
	ExistsByAuthor(context context.Context, titleID, userID string) (bool, error)

	Create(context context.Context, review *Review) error

	// Update overwrites text and score.
	Update(context context.Context, review *Review) error

	// Delete removes a review and its comments.
	Delete(context context.Context, titleID, id string) error
}

// # Comment Data Access

// CommentRepository defines the data access contract for comments.
//
// Every lookup is scoped by the owning review.
type CommentRepository interface {
	List(context context.Context, reviewID string, limit, offset int) ([]*Comment, int, error)
	FindByID(context context.Context, reviewID, id string) (*Comment, error)
	Create(context context.Context, comment *Comment) error
	Update(context context.Context, comment *Comment) error
	Delete(context context.Context, reviewID, id string) error
}
