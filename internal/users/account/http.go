// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yamdb/internal/platform/authz"
	"github.com/taibuivan/yamdb/internal/platform/middleware"
	requestutil "github.com/taibuivan/yamdb/internal/platform/request"
	"github.com/taibuivan/yamdb/internal/platform/respond"
	"github.com/taibuivan/yamdb/pkg/pagination"
)

// paramUsername is the URL parameter addressing one account.
const paramUsername = "username"

// Handler implements the HTTP layer for profiles and user management.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with the account domain's endpoints.
//
// # Endpoints
//   - GET|PATCH /me                  : Own profile (any signed-in user).
//   - GET|POST /                     : List and create accounts (ManageUsers).
//   - GET|PATCH|DELETE /{username}   : Manage one account (ManageUsers).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Own profile
	router.Get("/me", handler.getMe)
	router.Patch("/me", handler.updateMe)

	// User management
	router.With(middleware.Authorize(authz.UserAdminPolicy, "")).Get("/", handler.list)
	router.With(middleware.Authorize(authz.UserAdminPolicy, "")).Post("/", handler.create)

	router.Route("/{"+paramUsername+"}", func(r chi.Router) {
		r.Use(middleware.Authorize(authz.UserAdminPolicy, paramUsername))
		r.Get("/", handler.get)
		r.Patch("/", handler.update)
		r.Delete("/", handler.delete)
	})

	return router
}

// # Payloads

// profileRequest is the self-service body; role, username and email are not read.
type profileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
}

type userRequest struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
	Role      *string `json:"role"`
}

// # Own Profile Endpoints

/*
GET /api/v1/users/me/.

Response:
  - 200: User: The actor's profile
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	identity := requestutil.Identity(request)
	if err := authz.SelfPolicy.Check(identity, authz.ActionRetrieve); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.GetOwnProfile(request.Context(), identity)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
PATCH /api/v1/users/me/.

Request:
  - body: profileRequest (Partial JSON)

Response:
  - 200: User: The updated profile
  - 400: Validation: Invalid input data
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) updateMe(writer http.ResponseWriter, request *http.Request) {
	identity := requestutil.Identity(request)
	if err := authz.SelfPolicy.Check(identity, authz.ActionPartialUpdate); err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input profileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.UpdateOwnProfile(request.Context(), identity, ProfileInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// # Management Endpoints

/*
GET /api/v1/users/?search=&page=&limit=.

Response:
  - 200: Page[User]
  - 401/403: Not an administrator
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	users, total, err := handler.accountService.List(request.Context(), request.URL.Query().Get("search"), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, pagination.NewPage(request, params, users, total))
}

/*
POST /api/v1/users/.

Response:
  - 201: User: Created account
  - 400: Validation: Invalid, taken or reserved identity
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input userRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.Create(request.Context(), UserInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

// GET /api/v1/users/{username}/.
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	user, err := handler.accountService.Get(request.Context(), requestutil.Param(request, paramUsername))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// PATCH /api/v1/users/{username}/.
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	var input userRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.Update(request.Context(), requestutil.Param(request, paramUsername), UserInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// DELETE /api/v1/users/{username}/.
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	if err := handler.accountService.Delete(request.Context(), requestutil.Param(request, paramUsername)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
