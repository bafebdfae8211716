// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account handles the own-profile endpoint and user management.

# Architecture

  - Domain: This package depends on the auth package for the User entity
    and its repository; it owns no storage of its own.
  - Security: Self-service edits never touch role, username or email;
    management operations require the ManageUsers capability.
*/
package account

// Field names of the user representation.
const (
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldBio       = "bio"
	FieldRole      = "role"
)

// maxNameLen bounds first and last names.
const maxNameLen = 150

// maxEmailLen bounds stored email addresses.
const maxEmailLen = 254

// ProfileInput is the partial self-service update.
//
// Nil fields are left untouched.
type ProfileInput struct {
	FirstName *string
	LastName  *string
	Bio       *string
}

// UserInput is the full or partial administrative representation of an account.
//
// On create, Username and Email are required and a nil Role means user.
type UserInput struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Role      *string
}
