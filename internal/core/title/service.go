// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package title

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/yamdb/internal/core/reference"
	"github.com/taibuivan/yamdb/internal/platform/validate"
	"github.com/taibuivan/yamdb/pkg/pagination"
	"github.com/taibuivan/yamdb/pkg/pointer"
	"github.com/taibuivan/yamdb/pkg/uuid"
)

// TermResolver maps request slugs to stored taxonomy terms.
type TermResolver interface {
	Resolve(context context.Context, field string, slugs []string) ([]*reference.Term, error)
}

// WriteInput carries a create or partial-update payload. Nil fields are absent.
type WriteInput struct {
	Name        *string
	Year        *int
	Description *string
	Category    *string
	Genre       *[]string
}

// # Service Layer

// Service orchestrates the title use cases.
type Service struct {
	repo       Repository
	categories TermResolver
	genres     TermResolver
	logger     *slog.Logger
	now        func() time.Time
}

// NewService constructs a title [Service] with its dependencies.
func NewService(repo Repository, categories, genres TermResolver, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		categories: categories,
		genres:     genres,
		logger:     logger,
		now:        time.Now,
	}
}

/*
List returns one page of titles matching filter.

Parameters:
  - context: context.Context
  - filter: Filter (Limit and Offset are taken from params)
  - params: pagination.Params

Returns:
  - []*Title: Page items with rating
  - int: Total matching titles
  - error: Retrieval errors
*/
func (service *Service) List(context context.Context, filter Filter, params pagination.Params) ([]*Title, int, error) {
	filter.Name = strings.TrimSpace(filter.Name)
	filter.Limit = params.Limit
	filter.Offset = params.Offset()

	titles, total, err := service.repo.List(context, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("title_service_list_failed: %w", err)
	}
	return titles, total, nil
}

// Get returns one title with its rating.
func (service *Service) Get(context context.Context, id string) (*Title, error) {
	return service.repo.FindByID(context, id)
}

/*
Create validates and persists a new title.

Description: Category and genre slugs are resolved before anything is
written. The stored title is read back so the response carries the same
projection as a retrieve.

Parameters:
  - context: context.Context
  - input: WriteInput

Returns:
  - *Title: Created entity
  - error: ValidationError or storage failures
*/
func (service *Service) Create(context context.Context, input WriteInput) (*Title, error) {
	validator := &validate.Validator{}
	validator.Required(FieldName, pointer.Val(input.Name)).
		Custom(FieldYear, input.Year == nil, "This field is required")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	title := &Title{
		ID:        uuid.New(),
		CreatedAt: service.now().UTC(),
	}

	genreIDs, err := service.apply(context, title, input)
	if err != nil {
		return nil, err
	}

	if err := service.repo.Create(context, title, pointer.Fallback(genreIDs, []string{})); err != nil {
		return nil, fmt.Errorf("title_service_create_failed: %w", err)
	}

	service.logger.InfoContext(context, "title_created",
		slog.String("title_id", title.ID),
		slog.String("name", title.Name),
	)

	return service.repo.FindByID(context, title.ID)
}

/*
Update applies a partial update to a title.

Description: Absent fields keep their stored value. A present genre list
replaces the existing links; an empty category slug detaches the title.

Parameters:
  - context: context.Context
  - id: string
  - input: WriteInput

Returns:
  - *Title: The updated entity
  - error: NotFound, ValidationError or storage failures
*/
func (service *Service) Update(context context.Context, id string, input WriteInput) (*Title, error) {
	title, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	genreIDs, err := service.apply(context, title, input)
	if err != nil {
		return nil, err
	}

	if err := service.repo.Update(context, title, pointer.Val(genreIDs)); err != nil {
		return nil, fmt.Errorf("title_service_update_failed: %w", err)
	}

	service.logger.InfoContext(context, "title_updated", slog.String("title_id", title.ID))

	return service.repo.FindByID(context, title.ID)
}

// Delete removes a title together with its reviews and comments.
func (service *Service) Delete(context context.Context, id string) error {
	if err := service.repo.Delete(context, id); err != nil {
		return err
	}

	service.logger.InfoContext(context, "title_deleted", slog.String("title_id", id))

	return nil
}

// apply validates the present fields of input, resolves slugs and writes
// the result onto title. The returned pointer is nil when genres are absent.
func (service *Service) apply(context context.Context, title *Title, input WriteInput) (*[]string, error) {
	if input.Name != nil {
		title.Name = strings.TrimSpace(*input.Name)
	}
	if input.Year != nil {
		title.Year = *input.Year
	}
	if input.Description != nil {
		title.Description = *input.Description
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, title.Name).
		MaxLen(FieldName, title.Name, MaxNameLen).
		Custom(FieldYear, title.Year > service.now().Year(), "Cannot be later than the current year")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if input.Category != nil {
		title.CategoryID = nil
		title.Category = nil

		if slug := strings.TrimSpace(*input.Category); slug != "" {
			terms, err := service.categories.Resolve(context, FieldCategory, []string{slug})
			if err != nil {
				return nil, err
			}
			title.CategoryID = &terms[0].ID
			title.Category = terms[0]
		}
	}

	if input.Genre == nil {
		return nil, nil
	}

	terms, err := service.genres.Resolve(context, FieldGenre, *input.Genre)
	if err != nil {
		return nil, err
	}

	genreIDs := make([]string, 0, len(terms))
	for _, term := range terms {
		genreIDs = append(genreIDs, term.ID)
	}
	title.Genre = terms

	return &genreIDs, nil
}
