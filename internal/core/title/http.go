// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package title

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/authz"
	"github.com/taibuivan/yamdb/internal/platform/middleware"
	requestutil "github.com/taibuivan/yamdb/internal/platform/request"
	"github.com/taibuivan/yamdb/internal/platform/respond"
	"github.com/taibuivan/yamdb/pkg/pagination"
)

// ParamTitleID is the URL parameter naming a title. Nested routers reuse it.
const ParamTitleID = "title_id"

// Handler implements the HTTP layer for titles.
type Handler struct {
	service *Service
}

// NewHandler constructs a new title [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] for the title collection.
//
// # Access Control
//
// Reads are public; every write requires the ManageCatalog capability.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(r chi.Router) {
		r.Use(middleware.Authorize(authz.CatalogPolicy, ParamTitleID))

		r.Get("/", handler.list)
		r.Post("/", handler.create)
		r.Get("/{"+ParamTitleID+"}", handler.get)
		r.Patch("/{"+ParamTitleID+"}", handler.update)
		r.Delete("/{"+ParamTitleID+"}", handler.delete)
	})

	return router
}

type writeRequest struct {
	Name        *string   `json:"name"`
	Year        *int      `json:"year"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Genre       *[]string `json:"genre"`
}

// filterFromQuery reads the listing filters; a non-numeric year is rejected.
func filterFromQuery(query url.Values) (Filter, error) {
	filter := Filter{
		Name:     query.Get(FieldName),
		Genre:    query.Get(FieldGenre),
		Category: query.Get(FieldCategory),
	}

	if raw := query.Get(FieldYear); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return Filter{}, apperr.ValidationError("Invalid filter", apperr.FieldError{Field: FieldYear, Message: "Enter a whole number"})
		}
		filter.Year = &year
	}

	return filter, nil
}

/*
GET /api/v1/titles/?name=&year=&genre=&category=&page=&limit=.

Response:
  - 200: Page[Title]
  - 400: Validation: Malformed year
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	filter, err := filterFromQuery(request.URL.Query())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)

	titles, total, err := handler.service.List(request.Context(), filter, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, pagination.NewPage(request, params, titles, total))
}

// GET /api/v1/titles/{title_id}/.
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	title, err := handler.service.Get(request.Context(), requestutil.Param(request, ParamTitleID))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, title)
}

/*
POST /api/v1/titles/.

Request:
  - Body: writeRequest (category and genre given as slugs)

Response:
  - 201: Title
  - 400: Validation: Missing fields, future year or unknown slugs
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input writeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	title, err := handler.service.Create(request.Context(), WriteInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, title)
}

// PATCH /api/v1/titles/{title_id}/.
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	var input writeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	title, err := handler.service.Update(request.Context(), requestutil.Param(request, ParamTitleID), WriteInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, title)
}

// DELETE /api/v1/titles/{title_id}/.
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Delete(request.Context(), requestutil.Param(request, ParamTitleID)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
