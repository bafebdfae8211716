// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reference

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yamdb/internal/platform/authz"
	"github.com/taibuivan/yamdb/internal/platform/middleware"
	requestutil "github.com/taibuivan/yamdb/internal/platform/request"
	"github.com/taibuivan/yamdb/internal/platform/respond"
	"github.com/taibuivan/yamdb/pkg/pagination"
)

const paramSlug = "slug"

// Handler implements the HTTP layer for one taxonomy.
type Handler struct {
	service *Service
}

// NewHandler constructs a new reference [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] for the taxonomy collection.
//
// # Access Control
//
// Reads are public; create and delete require the ManageCatalog capability.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Inline group so the slug parameter is resolved before authorization.
	router.Group(func(r chi.Router) {
		r.Use(middleware.Authorize(authz.CatalogPolicy, paramSlug))

		r.Get("/", handler.list)
		r.Post("/", handler.create)
		r.Get("/{"+paramSlug+"}", handler.get)
		r.Delete("/{"+paramSlug+"}", handler.delete)
	})

	return router
}

type termRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

/*
GET /api/v1/{categories|genres}/?search=&page=&limit=.

Response:
  - 200: Page[Term]
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	terms, total, err := handler.service.List(request.Context(), request.URL.Query().Get("search"), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, pagination.NewPage(request, params, terms, total))
}

// GET /api/v1/{categories|genres}/{slug}/.
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	term, err := handler.service.Get(request.Context(), requestutil.Param(request, paramSlug))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, term)
}

/*
POST /api/v1/{categories|genres}/.

Request:
  - Body: termRequest (Name, optional Slug)

Response:
  - 201: Term
  - 400: Validation: Bad or taken slug
  - 401/403: Not a catalog manager
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input termRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	term := &Term{Name: input.Name, Slug: input.Slug}
	if err := handler.service.Create(request.Context(), term); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, term)
}

// DELETE /api/v1/{categories|genres}/{slug}/.
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Delete(request.Context(), requestutil.Param(request, paramSlug)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
