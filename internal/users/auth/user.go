// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the user directory and the confirmation/token flow.

It defines the core domain entities (User, Confirmation) and the logic that
turns a signup into an emailed code and a valid code into a bearer token.

# Architecture

  - Service: Orchestrates signup, code exchange and superuser bootstrap.
  - Repository: Postgres for accounts and confirmations, Redis for the
    failed-exchange counters.
  - Security: Codes are stored as keyed digests; tokens are RS256 JWTs.
*/
package auth

import (
	"time"

	"github.com/taibuivan/yamdb/internal/platform/sec"
)

// # Domain Entities

// User represents a registered account.
//
// The JSON form is the public profile shape returned by the user endpoints.
type User struct {
	ID        string    `json:"-"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Bio       string    `json:"bio"`
	Role      sec.Role  `json:"role"`
	IsStaff   bool      `json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Identity returns the actor view of the account.
func (user *User) Identity() *sec.Identity {
	return &sec.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		IsStaff:  user.IsStaff,
	}
}

// Confirmation is a one-time code issued at signup.
//
// Only the keyed digest of the code is kept. UsedAt records the first
// successful exchange; the code stays valid afterwards.
type Confirmation struct {
	ID         string
	UserID     string
	CodeDigest string
	CreatedAt  time.Time
	UsedAt     *time.Time
}

// # Field Identifiers

// Field names for validation and request mapping in the authentication domain.
const (
	FieldUsername         = "username"
	FieldEmail            = "email"
	FieldConfirmationCode = "confirmation_code"
	FieldToken            = "token"
)
