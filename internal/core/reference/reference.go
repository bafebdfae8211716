// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package reference manages the taxonomies titles are filed under.

Categories and genres share one shape, a display name and a unique URL slug,
so a single [Service] drives both; each instance is bound to one [Kind].

# Core Responsibility

  - Discovery: paginated listing with a name search, lookup by slug.
  - Curation: create and delete, restricted to catalog managers.
  - Resolution: slug-to-term lookups used by the title write path.
*/
package reference

import "github.com/taibuivan/yamdb/internal/platform/database/schema"

// # Domain

// Term is a category or a genre.
type Term struct {
	ID   string `json:"-"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Kind binds a [Service] to one taxonomy table.
type Kind struct {
	// Resource is the display name used in error messages.
	Resource string
	Table    schema.RefTable
}

var (
	// KindCategory addresses core.category.
	KindCategory = Kind{Resource: "Category", Table: schema.CoreCategory}
	// KindGenre addresses core.genre.
	KindGenre = Kind{Resource: "Genre", Table: schema.CoreGenre}
)

// # Search Params

// TermFilter narrows a listing.
type TermFilter struct {
	// Search matches names containing the term, case-insensitively.
	Search string
	Limit  int
	Offset int
}

// # Field Identifiers

const (
	FieldName = "name"
	FieldSlug = "slug"
)

// Limits mirrored by the migration column sizes.
const (
	MaxNameLen = 256
	MaxSlugLen = 50
)
