// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package review

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yamdb/internal/core/title"
	"github.com/taibuivan/yamdb/internal/platform/authz"
	"github.com/taibuivan/yamdb/internal/platform/middleware"
	requestutil "github.com/taibuivan/yamdb/internal/platform/request"
	"github.com/taibuivan/yamdb/internal/platform/respond"
	"github.com/taibuivan/yamdb/pkg/pagination"
)

const (
	paramReviewID  = "review_id"
	paramCommentID = "comment_id"
)

// Handler implements the HTTP layer for reviews and comments.
type Handler struct {
	service *Service
}

// NewHandler constructs a new review [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] meant to be mounted under /titles/{title_id}/reviews.
//
// # Access Control
//
// Reads are public; creating requires authentication; changing or deleting
// requires authorship or the ModerateContent capability.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(r chi.Router) {
		r.Use(middleware.Authorize(authz.ContentPolicy, paramReviewID))

		r.Get("/", handler.listReviews)
		r.Post("/", handler.createReview)
		r.Get("/{"+paramReviewID+"}", handler.getReview)
		r.Patch("/{"+paramReviewID+"}", handler.updateReview)
		r.Delete("/{"+paramReviewID+"}", handler.deleteReview)
	})

	router.Route("/{"+paramReviewID+"}/comments", func(comments chi.Router) {
		// Inline group: Authorize must see the matched comment_id.
		comments.Group(func(r chi.Router) {
			r.Use(middleware.Authorize(authz.ContentPolicy, paramCommentID))

			r.Get("/", handler.listComments)
			r.Post("/", handler.createComment)
			r.Get("/{"+paramCommentID+"}", handler.getComment)
			r.Patch("/{"+paramCommentID+"}", handler.updateComment)
			r.Delete("/{"+paramCommentID+"}", handler.deleteComment)
		})
	})

	return router
}

type reviewRequest struct {
	Text  *string `json:"text"`
	Score *int    `json:"score"`
}

type commentRequest struct {
	Text *string `json:"text"`
}

// # Reviews

// GET /api/v1/titles/{title_id}/reviews/.
func (handler *Handler) listReviews(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	reviews, total, err := handler.service.ListReviews(request.Context(), requestutil.Param(request, title.ParamTitleID), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, pagination.NewPage(request, params, reviews, total))
}

// GET /api/v1/titles/{title_id}/reviews/{review_id}/.
func (handler *Handler) getReview(writer http.ResponseWriter, request *http.Request) {
	review, err := handler.service.GetReview(request.Context(),
		requestutil.Param(request, title.ParamTitleID),
		requestutil.Param(request, paramReviewID),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, review)
}

/*
POST /api/v1/titles/{title_id}/reviews/.

Request:
  - Body: reviewRequest (text, score 1..10)

Response:
  - 201: Review
  - 400: Validation: Score out of range or duplicate review
  - 401: Anonymous actor
  - 404: Unknown title
*/
func (handler *Handler) createReview(writer http.ResponseWriter, request *http.Request) {
	var input reviewRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	review, err := handler.service.CreateReview(request.Context(),
		requestutil.Param(request, title.ParamTitleID),
		requestutil.Identity(request),
		ReviewInput(input),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, review)
}

// PATCH /api/v1/titles/{title_id}/reviews/{review_id}/.
func (handler *Handler) updateReview(writer http.ResponseWriter, request *http.Request) {
	var input reviewRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	review, err := handler.service.UpdateReview(request.Context(),
		requestutil.Param(request, title.ParamTitleID),
		requestutil.Param(request, paramReviewID),
		requestutil.Identity(request),
		ReviewInput(input),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, review)
}

// DELETE /api/v1/titles/{title_id}/reviews/{review_id}/.
func (handler *Handler) deleteReview(writer http.ResponseWriter, request *http.Request) {
	err := handler.service.DeleteReview(request.Context(),
		requestutil.Param(request, title.ParamTitleID),
		requestutil.Param(request, paramReviewID),
		requestutil.Identity(request),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Comments

// GET /api/v1/titles/{title_id}/reviews/{review_id}/comments/.
func (handler *Handler) listComments(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	comments, total, err := handler.service.ListComments(request.Context(),
		requestutil.Param(request, title.ParamTitleID),
		requestutil.Param(request, paramReviewID),
		params,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, pagination.NewPage(request, params, comments, total))
}

// GET /api/v1/titles/{title_id}/reviews/{review_id}/comments/{comment_id}/.
func (handler *Handler) getComment(writer http.ResponseWriter, request *http.Request) {
	comment, err := handler.service.GetComment(request.Context(),
		requestutil.Param(request, title.ParamTitleID),
		requestutil.Param(request, paramReviewID),
		requestutil.Param(request, paramCommentID),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, comment)
}

// POST /api/v1/titles/{title_id}/reviews/{review_id}/comments/.
func (handler *Handler) createComment(writer http.ResponseWriter, request *http.Request) {
	var input commentRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comment, err := handler.service.CreateComment(request.Context(),
		requestutil.Param(request, title.ParamTitleID),
		requestutil.Param(request, paramReviewID),
		requestutil.Identity(request),
		CommentInput(input),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, comment)
}

// PATCH /api/v1/titles/{title_id}/reviews/{review_id}/comments/{comment_id}/.
func (handler *Handler) updateComment(writer http.ResponseWriter, request *http.Request) {
	var input commentRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comment, err := handler.service.UpdateComment(request.Context(),
		requestutil.Param(request, title.ParamTitleID),
		requestutil.Param(request, paramReviewID),
		requestutil.Param(request, paramCommentID),
		requestutil.Identity(request),
		CommentInput(input),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, comment)
}

// DELETE /api/v1/titles/{title_id}/reviews/{review_id}/comments/{comment_id}/.
func (handler *Handler) deleteComment(writer http.ResponseWriter, request *http.Request) {
	err := handler.service.DeleteComment(request.Context(),
		requestutil.Param(request, title.ParamTitleID),
		requestutil.Param(request, paramReviewID),
		requestutil.Param(request, paramCommentID),
		requestutil.Identity(request),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
