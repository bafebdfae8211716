// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination provides shared types and helpers for API list endpoints.
//
// # Overview
//
// It standardizes how page-based navigation is requested via query parameters
// and how the resulting page is delivered to the client: a total count, links
// to the neighbouring pages, and the page items.
package pagination

import (
	"net/http"
	"net/url"
	"strconv"
)

const (
	// DefaultLimit is the number of items per page if not specified.
	DefaultLimit = 10
	// MaxLimit is the upper bound for items per page to prevent system abuse.
	MaxLimit = 100
	// DefaultPage is the starting page (1-indexed).
	DefaultPage = 1
	// MaxPage bounds the page number so the derived OFFSET cannot overflow.
	MaxPage = 1_000_000
)

// Params holds the parsed page and limit from a request's query string.
type Params struct {
	Page  int
	Limit int
}

// Offset returns the SQL OFFSET value derived from [Page] and [Limit].
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Page is the list response body.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// NewPage assembles a [Page] for the items of the current request.
//
// Next and Previous are absolute links built from the request URL with only
// the "page" parameter replaced; they are nil at either end of the range.
func NewPage[T any](r *http.Request, params Params, items []T, total int) Page[T] {
	if items == nil {
		items = []T{}
	}

	page := Page[T]{Count: total, Results: items}

	if params.Page*params.Limit < total {
		link := pageLink(r, params.Page+1)
		page.Next = &link
	}

	if params.Page > 1 {
		link := pageLink(r, params.Page-1)
		page.Previous = &link
	}

	return page
}

// FromRequest parses "page" and "limit" query parameters from an HTTP request.
//
// # Clamping
//
// Invalid, negative, or excessive values are automatically clamped to
// [DefaultPage], [MaxPage], [DefaultLimit], or [MaxLimit].
func FromRequest(r *http.Request) Params {
	page := parseIntParam(r, "page", DefaultPage)
	limit := parseIntParam(r, "limit", DefaultLimit)

	if page < 1 {
		page = DefaultPage
	}

	if page > MaxPage {
		page = MaxPage
	}

	if limit < 1 {
		limit = DefaultLimit
	}

	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Params{Page: page, Limit: limit}
}

// parseIntParam parses a single integer query parameter with a fallback default.
func parseIntParam(r *http.Request, key string, defaultVal int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultVal
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal
	}

	return n
}

// pageLink rebuilds the request URL pointing at another page.
func pageLink(r *http.Request, page int) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}

	query := r.URL.Query()
	query.Set("page", strconv.Itoa(page))

	link := url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     r.URL.Path,
		RawQuery: query.Encode(),
	}
	return link.String()
}
