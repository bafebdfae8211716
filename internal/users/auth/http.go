// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/yamdb/internal/platform/request"
	"github.com/taibuivan/yamdb/internal/platform/respond"
)

// # Definitions & Constructors

// Handler implements the public signup and token endpoints.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /signup : Registers an account and emails a confirmation code.
//   - POST /token  : Exchanges a confirmation code for a bearer token.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/signup", handler.signup)
	router.Post("/token", handler.token)

	return router
}

// # Request Payloads

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type signupResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type tokenRequest struct {
	Username         string `json:"username"`
	ConfirmationCode string `json:"confirmation_code"`
}

/*
Signup registers a new account.

POST /api/v1/auth/signup/

Request:
  - Body: signupRequest (Username, Email)

Response:
  - 200: signupResponse: Echo of the registered identity
  - 400: ValidationError: Bad input, taken username/email or reserved name
*/
func (handler *Handler) signup(writer http.ResponseWriter, request *http.Request) {
	var input signupRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.RequestSignup(request.Context(), SignupInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, signupResponse{Username: user.Username, Email: user.Email})
}

/*
Token exchanges a confirmation code for a bearer token.

POST /api/v1/auth/token/

Request:
  - Body: tokenRequest (Username, ConfirmationCode)

Response:
  - 200: {"token": "..."}
  - 400: ValidationError: Missing fields or code mismatch
  - 404: NotFound: Unknown username
  - 429: RateLimited: Too many failed exchanges
*/
func (handler *Handler) token(writer http.ResponseWriter, request *http.Request) {
	var input tokenRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	token, err := handler.authService.ExchangeCode(request.Context(), ExchangeInput{
		Username: input.Username,
		Code:     input.ConfirmationCode,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{FieldToken: token})
}
