// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reference

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/yamdb/internal/platform/validate"
	"github.com/taibuivan/yamdb/pkg/pagination"
	"github.com/taibuivan/yamdb/pkg/slug"
	"github.com/taibuivan/yamdb/pkg/uuid"
)

// # Service Layer

// Service orchestrates business rules for one taxonomy.
type Service struct {
	repo   Repository
	kind   Kind
	logger *slog.Logger
}

// NewService constructs a reference [Service] bound to kind.
func NewService(repo Repository, kind Kind, logger *slog.Logger) *Service {
	return &Service{repo: repo, kind: kind, logger: logger}
}

// Kind reports the taxonomy the service manages.
func (service *Service) Kind() Kind {
	return service.kind
}

/*
List returns one page of terms, optionally filtered by name.

Parameters:
  - context: context.Context
  - search: string
  - params: pagination.Params

Returns:
  - []*Term: Page items
  - int: Total record count for pagination
  - error: Retrieval errors
*/
func (service *Service) List(context context.Context, search string, params pagination.Params) ([]*Term, int, error) {
	return service.repo.List(context, TermFilter{
		Search: strings.TrimSpace(search),
		Limit:  params.Limit,
		Offset: params.Offset(),
	})
}

// Get resolves a slug to its term.
func (service *Service) Get(context context.Context, slug string) (*Term, error) {
	return service.repo.FindBySlug(context, slug)
}

/*
Resolve maps slugs to terms, preserving the input order.

Description: Duplicates collapse to one term. Any unknown slug fails the
whole call and is reported under field.

Parameters:
  - context: context.Context
  - field: string (request field the slugs came from)
  - slugs: []string

Returns:
  - []*Term: Terms in input order
  - error: ValidationError naming the first unknown slug
*/
func (service *Service) Resolve(context context.Context, field string, slugs []string) ([]*Term, error) {
	found, err := service.repo.FindBySlugs(context, slugs)
	if err != nil {
		return nil, fmt.Errorf("reference_service_resolve_failed: %w", err)
	}

	bySlug := make(map[string]*Term, len(found))
	for _, term := range found {
		bySlug[term.Slug] = term
	}

	terms := make([]*Term, 0, len(slugs))
	seen := make(map[string]bool, len(slugs))
	for _, s := range slugs {
		term, ok := bySlug[s]
		if !ok {
			return nil, validate.RequiredError(field, fmt.Sprintf("%s with slug %q does not exist", service.kind.Resource, s))
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		terms = append(terms, term)
	}

	return terms, nil
}

/*
Create validates and persists a new term.

Description: An empty slug is derived from the name.

Parameters:
  - context: context.Context
  - term: *Term

Returns:
  - error: ValidationError (bad or taken slug) or storage errors
*/
func (service *Service) Create(context context.Context, term *Term) error {
	term.Name = strings.TrimSpace(term.Name)
	term.Slug = strings.TrimSpace(term.Slug)
	if term.Slug == "" {
		term.Slug = slug.From(term.Name)
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, term.Name).
		MaxLen(FieldName, term.Name, MaxNameLen).
		Required(FieldSlug, term.Slug).
		MaxLen(FieldSlug, term.Slug, MaxSlugLen)
	if term.Slug != "" {
		validator.Slug(FieldSlug, term.Slug)
	}

	if err := validator.Err(); err != nil {
		return err
	}

	term.ID = uuid.New()
	if err := service.repo.Create(context, term); err != nil {
		return err
	}

	service.logger.InfoContext(context, "reference_term_created",
		slog.String("kind", service.kind.Resource),
		slog.String("slug", term.Slug),
	)

	return nil
}

// Delete removes the term with the given slug.
func (service *Service) Delete(context context.Context, slug string) error {
	if err := service.repo.Delete(context, slug); err != nil {
		return err
	}

	service.logger.InfoContext(context, "reference_term_deleted",
		slog.String("kind", service.kind.Resource),
		slog.String("slug", slug),
	)

	return nil
}
