// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package title manages the rated works of the catalog.

A title belongs to at most one category and any number of genres. Its
rating is never stored: every read aggregates the scores of its reviews.

# Core Responsibility

  - Discovery: listing filtered by name, year, genre and category.
  - Curation: create, partial update and delete by catalog managers.
  - Aggregation: the rating is the mean review score, rounded to one decimal.
*/
package title

import (
	"math"
	"time"

	"github.com/taibuivan/yamdb/internal/core/reference"
)

// # Domain

// Title is a rated work.
type Title struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Year        int               `json:"year"`
	Description string            `json:"description"`
	Category    *reference.Term   `json:"category"`
	Genre       []*reference.Term `json:"genre"`

	// Rating is nil while the title has no reviews.
	Rating *float64 `json:"rating"`

	CategoryID *string   `json:"-"`
	CreatedAt  time.Time `json:"-"`
}

// RoundRating rounds a mean score to one decimal; nil stays nil.
func RoundRating(mean *float64) *float64 {
	if mean == nil {
		return nil
	}
	rounded := math.Round(*mean*10) / 10
	return &rounded
}

// # Search Params

// Filter narrows a title listing. Zero values disable a criterion.
type Filter struct {
	// Name matches titles containing the term, case-insensitively.
	Name string
	// Year matches exactly.
	Year *int
	// Genre and Category match by slug.
	Genre    string
	Category string

	Limit  int
	Offset int
}

// # Field Identifiers

const (
	FieldName        = "name"
	FieldYear        = "year"
	FieldDescription = "description"
	FieldCategory    = "category"
	FieldGenre       = "genre"
)

// MaxNameLen bounds the title name.
const MaxNameLen = 256
