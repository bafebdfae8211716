// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/authz"
	"github.com/taibuivan/yamdb/internal/platform/sec"
	"github.com/taibuivan/yamdb/internal/platform/validate"
	"github.com/taibuivan/yamdb/pkg/pagination"
	"github.com/taibuivan/yamdb/pkg/pointer"
	"github.com/taibuivan/yamdb/pkg/uuid"
)

// ReviewInput carries a review create or partial-update payload.
type ReviewInput struct {
	Text  *string
	Score *int
}

// CommentInput carries a comment create or partial-update payload.
type CommentInput struct {
	Text *string
}

// # Service Layer

// Service orchestrates the review and comment use cases.
//
// # Access Control
//
// Action-level rules run in the HTTP layer. Ownership is checked here,
// once the object is loaded, against [authz.ContentPolicy].
type Service struct {
	reviewRepo  ReviewRepository
	commentRepo CommentRepository
	logger      *slog.Logger
	now         func() time.Time
}

// NewService constructs a review [Service] with its repositories.
func NewService(reviewRepo ReviewRepository, commentRepo CommentRepository, logger *slog.Logger) *Service {
	return &Service{
		reviewRepo:  reviewRepo,
		commentRepo: commentRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// # Review Operations

// requireTitle fails with NotFound when the parent title is missing.
func (service *Service) requireTitle(context context.Context, titleID string) error {
	exists, err := service.reviewRepo.TitleExists(context, titleID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound("Title")
	}
	return nil
}

/*
ListReviews returns one page of the reviews of a title.

Parameters:
  - context: context.Context
  - titleID: string
  - params: pagination.Params

Returns:
  - []*Review: Page items
  - int: Total review count
  - error: NotFound for an unknown title
*/
func (service *Service) ListReviews(context context.Context, titleID string, params pagination.Params) ([]*Review, int, error) {
	if err := service.requireTitle(context, titleID); err != nil {
		return nil, 0, err
	}
	return service.reviewRepo.List(context, titleID, params.Limit, params.Offset())
}

// GetReview returns a review of the given title.
func (service *Service) GetReview(context context.Context, titleID, id string) (*Review, error) {
	return service.reviewRepo.FindByID(context, titleID, id)
}

/*
CreateReview records the actor's review of a title.

Description: The author is always the actor. A user reviews a title at
most once.

Parameters:
  - context: context.Context
  - titleID: string
  - identity: *sec.Identity
  - input: ReviewInput

Returns:
  - *Review: Created entity
  - error: NotFound, ValidationError or storage failures
*/
func (service *Service) CreateReview(context context.Context, titleID string, identity *sec.Identity, input ReviewInput) (*Review, error) {
	if err := authz.ContentPolicy.Check(identity, authz.ActionCreate); err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	validator.Required(FieldText, pointer.Val(input.Text)).
		Custom(FieldScore, input.Score == nil, "This field is required")
	if input.Score != nil {
		validator.Range(FieldScore, *input.Score, MinScore, MaxScore)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.requireTitle(context, titleID); err != nil {
		return nil, err
	}

	reviewed, err := service.reviewRepo.ExistsByAuthor(context, titleID, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("review_service_duplicate_check_failed: %w", err)
	}
	if reviewed {
		return nil, apperr.ValidationError("Review already exists", apperr.FieldError{
			Field:   "non_field_errors",
			Message: "You have already reviewed this title",
		})
	}

	review := &Review{
		ID:       uuid.New(),
		TitleID:  titleID,
		AuthorID: identity.UserID,
		Author:   identity.Username,
		Text:     *input.Text,
		Score:    *input.Score,
		PubDate:  service.now().UTC(),
	}

	if err := service.reviewRepo.Create(context, review); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "review_created",
		slog.String("review_id", review.ID),
		slog.String("title_id", titleID),
		slog.Int("score", review.Score),
	)

	return review, nil
}

/*
UpdateReview applies a partial update to a review.

Parameters:
  - context: context.Context
  - titleID: string
  - id: string
  - identity: *sec.Identity
  - input: ReviewInput

Returns:
  - *Review: The updated entity
  - error: NotFound, Forbidden, ValidationError or storage failures
*/
func (service *Service) UpdateReview(context context.Context, titleID, id string, identity *sec.Identity, input ReviewInput) (*Review, error) {
	review, err := service.reviewRepo.FindByID(context, titleID, id)
	if err != nil {
		return nil, err
	}

	if err := authz.ContentPolicy.CheckObject(identity, authz.ActionPartialUpdate, review.AuthorID); err != nil {
		return nil, err
	}

	review.Text = pointer.Fallback(input.Text, review.Text)
	review.Score = pointer.Fallback(input.Score, review.Score)

	validator := &validate.Validator{}
	validator.Required(FieldText, review.Text).
		Range(FieldScore, review.Score, MinScore, MaxScore)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.reviewRepo.Update(context, review); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "review_updated",
		slog.String("review_id", review.ID),
		slog.String("actor_id", identity.UserID),
	)

	return review, nil
}

// DeleteReview removes a review after the ownership check.
func (service *Service) DeleteReview(context context.Context, titleID, id string, identity *sec.Identity) error {
	review, err := service.reviewRepo.FindByID(context, titleID, id)
	if err != nil {
		return err
	}

	if err := authz.ContentPolicy.CheckObject(identity, authz.ActionDestroy, review.AuthorID); err != nil {
		return err
	}

	if err := service.reviewRepo.Delete(context, titleID, id); err != nil {
		return err
	}

	service.logger.InfoContext(context, "review_deleted",
		slog.String("review_id", id),
		slog.String("actor_id", identity.UserID),
	)

	return nil
}

// # Comment Operations

// ListComments returns one page of the comments of a review within a title.
func (service *Service) ListComments(context context.Context, titleID, reviewID string, params pagination.Params) ([]*Comment, int, error) {
	if _, err := service.reviewRepo.FindByID(context, titleID, reviewID); err != nil {
		return nil, 0, err
	}
	return service.commentRepo.List(context, reviewID, params.Limit, params.Offset())
}

// GetComment returns a comment of a review within a title.
func (service *Service) GetComment(context context.Context, titleID, reviewID, id string) (*Comment, error) {
	if _, err := service.reviewRepo.FindByID(context, titleID, reviewID); err != nil {
		return nil, err
	}
	return service.commentRepo.FindByID(context, reviewID, id)
}

/*
CreateComment records the actor's reply to a review.

Parameters:
  - context: context.Context
  - titleID: string
  - reviewID: string
  - identity: *sec.Identity
  - input: CommentInput

Returns:
  - *Comment: Created entity
  - error: NotFound, ValidationError or storage failures
*/
func (service *Service) CreateComment(context context.Context, titleID, reviewID string, identity *sec.Identity, input CommentInput) (*Comment, error) {
	if err := authz.ContentPolicy.Check(identity, authz.ActionCreate); err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	if err := validator.Required(FieldText, pointer.Val(input.Text)).Err(); err != nil {
		return nil, err
	}

	if _, err := service.reviewRepo.FindByID(context, titleID, reviewID); err != nil {
		return nil, err
	}

	comment := &Comment{
		ID:       uuid.New(),
		ReviewID: reviewID,
		AuthorID: identity.UserID,
		Author:   identity.Username,
		Text:     *input.Text,
		PubDate:  service.now().UTC(),
	}

	if err := service.commentRepo.Create(context, comment); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "comment_created",
		slog.String("comment_id", comment.ID),
		slog.String("review_id", reviewID),
	)

	return comment, nil
}

// UpdateComment applies a partial update to a comment after the ownership check.
func (service *Service) UpdateComment(context context.Context, titleID, reviewID, id string, identity *sec.Identity, input CommentInput) (*Comment, error) {
	comment, err := service.GetComment(context, titleID, reviewID, id)
	if err != nil {
		return nil, err
	}

	if err := authz.ContentPolicy.CheckObject(identity, authz.ActionPartialUpdate, comment.AuthorID); err != nil {
		return nil, err
	}

	comment.Text = pointer.Fallback(input.Text, comment.Text)

	validator := &validate.Validator{}
	if err := validator.Required(FieldText, comment.Text).Err(); err != nil {
		return nil, err
	}

	if err := service.commentRepo.Update(context, comment); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "comment_updated",
		slog.String("comment_id", comment.ID),
		slog.String("actor_id", identity.UserID),
	)

	return comment, nil
}

// DeleteComment removes a comment after the ownership check.
func (service *Service) DeleteComment(context context.Context, titleID, reviewID, id string, identity *sec.Identity) error {
	comment, err := service.GetComment(context, titleID, reviewID, id)
	if err != nil {
		return err
	}

	if err := authz.ContentPolicy.CheckObject(identity, authz.ActionDestroy, comment.AuthorID); err != nil {
		return err
	}

	if err := service.commentRepo.Delete(context, reviewID, id); err != nil {
		return err
	}

	service.logger.InfoContext(context, "comment_deleted",
		slog.String("comment_id", id),
		slog.String("actor_id", identity.UserID),
	)

	return nil
}
