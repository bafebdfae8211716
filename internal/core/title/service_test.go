// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package title

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yamdb/internal/core/reference"
	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/ctxutil"
	"github.com/taibuivan/yamdb/internal/platform/sec"
	"github.com/taibuivan/yamdb/internal/platform/validate"
	"github.com/taibuivan/yamdb/pkg/pagination"
	"github.com/taibuivan/yamdb/pkg/pointer"
)

type memoryTitles struct {
	titles map[string]*Title
	genres map[string][]string
	scores map[string][]int
}

func newMemoryTitles() *memoryTitles {
	return &memoryTitles{
		titles: map[string]*Title{},
		genres: map[string][]string{},
		scores: map[string][]int{},
	}
}

func (store *memoryTitles) hydrate(title *Title) *Title {
	copied := *title
	if scores := store.scores[title.ID]; len(scores) > 0 {
		var sum int
		for _, score := range scores {
			sum += score
		}
		copied.Rating = RoundRating(pointer.To(float64(sum) / float64(len(scores))))
	}
	return &copied
}

func (store *memoryTitles) List(_ context.Context, filter Filter) ([]*Title, int, error) {
	var matched []*Title
	for _, title := range store.titles {
		if filter.Name != "" && !strings.Contains(strings.ToLower(title.Name), strings.ToLower(filter.Name)) {
			continue
		}
		if filter.Year != nil && title.Year != *filter.Year {
			continue
		}
		matched = append(matched, store.hydrate(title))
	}
	return matched, len(matched), nil
}

func (store *memoryTitles) FindByID(_ context.Context, id string) (*Title, error) {
	if title, ok := store.titles[id]; ok {
		return store.hydrate(title), nil
	}
	return nil, apperr.NotFound("Title")
}

func (store *memoryTitles) Create(_ context.Context, title *Title, genreIDs []string) error {
	copied := *title
	store.titles[title.ID] = &copied
	store.genres[title.ID] = genreIDs
	return nil
}

func (store *memoryTitles) Update(_ context.Context, title *Title, genreIDs []string) error {
	if _, ok := store.titles[title.ID]; !ok {
		return apperr.NotFound("Title")
	}
	copied := *title
	store.titles[title.ID] = &copied
	if genreIDs != nil {
		store.genres[title.ID] = genreIDs
	}
	return nil
}

func (store *memoryTitles) Delete(_ context.Context, id string) error {
	if _, ok := store.titles[id]; !ok {
		return apperr.NotFound("Title")
	}
	delete(store.titles, id)
	return nil
}

type staticTerms struct {
	resource string
	terms    map[string]*reference.Term
}

func (resolver staticTerms) Resolve(_ context.Context, field string, slugs []string) ([]*reference.Term, error) {
	terms := make([]*reference.Term, 0, len(slugs))
	for _, slug := range slugs {
		term, ok := resolver.terms[slug]
		if !ok {
			return nil, validate.RequiredError(field, fmt.Sprintf("%s with slug %q does not exist", resolver.resource, slug))
		}
		terms = append(terms, term)
	}
	return terms, nil
}

func newTitleService() (*Service, *memoryTitles) {
	store := newMemoryTitles()
	categories := staticTerms{resource: "Category", terms: map[string]*reference.Term{
		"movie": {ID: "c-1", Name: "Movie", Slug: "movie"},
		"book":  {ID: "c-2", Name: "Book", Slug: "book"},
	}}
	genres := staticTerms{resource: "Genre", terms: map[string]*reference.Term{
		"drama":  {ID: "g-1", Name: "Drama", Slug: "drama"},
		"comedy": {ID: "g-2", Name: "Comedy", Slug: "comedy"},
	}}

	service := NewService(store, categories, genres, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	service.now = func() time.Time { return time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC) }

	return service, store
}

func TestRoundRating(t *testing.T) {
	assert.Nil(t, RoundRating(nil))
	assert.Equal(t, 9.0, *RoundRating(pointer.To(9.0)))
	assert.Equal(t, 7.3, *RoundRating(pointer.To(22.0/3.0)))
	assert.Equal(t, 6.7, *RoundRating(pointer.To(20.0/3.0)))
}

func TestCreate_Success(t *testing.T) {
	service, store := newTitleService()

	title, err := service.Create(context.Background(), WriteInput{
		Name:     pointer.To("  Stalker "),
		Year:     pointer.To(1979),
		Category: pointer.To("movie"),
		Genre:    &[]string{"drama", "comedy"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Stalker", title.Name)
	assert.Equal(t, "c-1", pointer.Val(title.CategoryID))
	assert.Nil(t, title.Rating)
	assert.Equal(t, []string{"g-1", "g-2"}, store.genres[title.ID])
}

func TestCreate_Validation(t *testing.T) {
	service, _ := newTitleService()

	tests := []struct {
		name  string
		input WriteInput
		field string
	}{
		{"missing_name", WriteInput{Year: pointer.To(2000)}, FieldName},
		{"missing_year", WriteInput{Name: pointer.To("Solaris")}, FieldYear},
		{"future_year", WriteInput{Name: pointer.To("Solaris"), Year: pointer.To(2027)}, FieldYear},
		{"long_name", WriteInput{Name: pointer.To(strings.Repeat("a", MaxNameLen+1)), Year: pointer.To(2000)}, FieldName},
		{"unknown_category", WriteInput{Name: pointer.To("Solaris"), Year: pointer.To(1972), Category: pointer.To("opera")}, FieldCategory},
		{"unknown_genre", WriteInput{Name: pointer.To("Solaris"), Year: pointer.To(1972), Genre: &[]string{"drama", "western"}}, FieldGenre},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Create(context.Background(), tt.input)
			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, apperr.CodeValidation, ae.Code)
			require.NotEmpty(t, ae.Details)
			assert.Equal(t, tt.field, ae.Details[0].Field)
		})
	}
}

func TestCreate_CurrentYearAllowed(t *testing.T) {
	service, _ := newTitleService()

	_, err := service.Create(context.Background(), WriteInput{Name: pointer.To("New"), Year: pointer.To(2026)})
	assert.NoError(t, err)
}

func TestUpdate_Partial(t *testing.T) {
	service, store := newTitleService()

	created, err := service.Create(context.Background(), WriteInput{
		Name:        pointer.To("Solaris"),
		Year:        pointer.To(1972),
		Description: pointer.To("Ocean"),
		Category:    pointer.To("movie"),
		Genre:       &[]string{"drama"},
	})
	require.NoError(t, err)

	updated, err := service.Update(context.Background(), created.ID, WriteInput{Category: pointer.To("book")})
	require.NoError(t, err)
	assert.Equal(t, "Solaris", updated.Name)
	assert.Equal(t, 1972, updated.Year)
	assert.Equal(t, "Ocean", updated.Description)
	assert.Equal(t, "c-2", pointer.Val(updated.CategoryID))
	assert.Equal(t, []string{"g-1"}, store.genres[created.ID])

	_, err = service.Update(context.Background(), created.ID, WriteInput{Genre: &[]string{}})
	require.NoError(t, err)
	assert.Empty(t, store.genres[created.ID])

	_, err = service.Update(context.Background(), created.ID, WriteInput{Category: pointer.To("")})
	require.NoError(t, err)
	assert.Nil(t, store.titles[created.ID].CategoryID)
}

func TestUpdate_Missing(t *testing.T) {
	service, _ := newTitleService()

	_, err := service.Update(context.Background(), "missing", WriteInput{Name: pointer.To("x")})
	assert.True(t, apperr.IsNotFound(err))
}

func TestGet_Rating(t *testing.T) {
	service, store := newTitleService()

	created, err := service.Create(context.Background(), WriteInput{Name: pointer.To("Solaris"), Year: pointer.To(1972)})
	require.NoError(t, err)

	store.scores[created.ID] = []int{8, 10}

	title, err := service.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, title.Rating)
	assert.Equal(t, 9.0, *title.Rating)
}

func TestFilterFromQuery(t *testing.T) {
	filter, err := filterFromQuery(url.Values{"name": {"sol"}, "year": {"1972"}, "genre": {"drama"}, "category": {"movie"}})
	require.NoError(t, err)
	assert.Equal(t, "sol", filter.Name)
	assert.Equal(t, 1972, pointer.Val(filter.Year))
	assert.Equal(t, "drama", filter.Genre)
	assert.Equal(t, "movie", filter.Category)

	_, err = filterFromQuery(url.Values{"year": {"soon"}})
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, FieldYear, ae.Details[0].Field)
}

func TestList_Paginates(t *testing.T) {
	service, _ := newTitleService()
	for _, name := range []string{"Solaris", "Stalker"} {
		_, err := service.Create(context.Background(), WriteInput{Name: pointer.To(name), Year: pointer.To(1979)})
		require.NoError(t, err)
	}

	titles, total, err := service.List(context.Background(), Filter{Name: " sta "}, pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Stalker", titles[0].Name)
}

func TestHandler_Permissions(t *testing.T) {
	service, _ := newTitleService()
	existing, err := service.Create(context.Background(), WriteInput{Name: pointer.To("Solaris"), Year: pointer.To(1972)})
	require.NoError(t, err)

	router := NewHandler(service).Routes()

	user := &sec.Identity{UserID: "u-1", Username: "alice", Role: sec.RoleUser}
	moderator := &sec.Identity{UserID: "u-2", Username: "bob", Role: sec.RoleModerator}
	admin := &sec.Identity{UserID: "u-3", Username: "root", Role: sec.RoleAdmin}

	payload := `{"name":"Stalker","year":1979,"genre":["drama"],"category":"movie"}`

	tests := []struct {
		name     string
		identity *sec.Identity
		method   string
		path     string
		body     string
		status   int
	}{
		{"list_anonymous", nil, http.MethodGet, "/", "", http.StatusOK},
		{"list_bad_year", nil, http.MethodGet, "/?year=soon", "", http.StatusBadRequest},
		{"get_anonymous", nil, http.MethodGet, "/" + existing.ID, "", http.StatusOK},
		{"get_missing", nil, http.MethodGet, "/missing", "", http.StatusNotFound},
		{"create_anonymous", nil, http.MethodPost, "/", payload, http.StatusUnauthorized},
		{"create_user", user, http.MethodPost, "/", payload, http.StatusForbidden},
		{"create_moderator", moderator, http.MethodPost, "/", payload, http.StatusForbidden},
		{"create_admin", admin, http.MethodPost, "/", payload, http.StatusCreated},
		{"create_admin_future", admin, http.MethodPost, "/", `{"name":"Later","year":2099}`, http.StatusBadRequest},
		{"patch_user", user, http.MethodPatch, "/" + existing.ID, `{"name":"x"}`, http.StatusForbidden},
		{"patch_admin", admin, http.MethodPatch, "/" + existing.ID, `{"description":"Ocean"}`, http.StatusOK},
		{"delete_moderator", moderator, http.MethodDelete, "/" + existing.ID, "", http.StatusForbidden},
		{"delete_admin", admin, http.MethodDelete, "/" + existing.ID, "", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.identity != nil {
				request = request.WithContext(ctxutil.WithIdentity(request.Context(), tt.identity))
			}
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, request)
			assert.Equal(t, tt.status, recorder.Code, recorder.Body.String())
		})
	}
}

func TestHandler_CreateResponseShape(t *testing.T) {
	service, _ := newTitleService()
	router := NewHandler(service).Routes()

	request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Stalker","year":1979,"genre":["drama"],"category":"movie"}`))
	request = request.WithContext(ctxutil.WithIdentity(request.Context(), &sec.Identity{UserID: "u-3", Role: sec.RoleAdmin}))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	body := recorder.Body.String()
	assert.Contains(t, body, `"rating":null`)
	assert.Contains(t, body, `"category":{"name":"Movie","slug":"movie"}`)
	assert.Contains(t, body, `"genre":[{"name":"Drama","slug":"drama"}]`)
}
