// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "name", "Dune", false},
		{"empty_string", "name", "", true},
		{"whitespace_only", "name", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_Email checks the email format validation rule.
*/
func TestValidator_Email(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		isValid bool
	}{
		{"valid_email", "test@example.com", true},
		{"invalid_format", "invalid-email", false},
		{"missing_domain", "test@", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Email("email", tt.email)

			if tt.isValid {
				assert.False(t, v.HasErrors())
			} else {
				assert.True(t, v.HasErrors())
			}
		})
	}
}

/*
TestValidator_Chain tests the fluent API (chaining multiple rules).
*/
func TestValidator_Chain(t *testing.T) {
	v := &validate.Validator{}

	// Multi-rule validation
	err := v.
		Required("username", "tai").
		Range("score", 7, 1, 10).
		MaxLen("username", "tai", 10).
		Email("email", "tai@yamdb.local").
		Err()

	assert.NoError(t, err)
	assert.False(t, v.HasErrors())
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("username", "").       // Fails
		Range("score", 11, 1, 10).      // Fails
		Email("email", "not-an-email"). // Fails
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)

	// Should accumulate all 3 errors
	assert.Len(t, ae.Details, 3)
}

/*
TestValidator_Username checks the account name rule.
*/
func TestValidator_Username(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		isValid bool
	}{
		{"plain", "alice", true},
		{"punctuation", "a.l+i-c_e@x", true},
		{"space", "alice smith", false},
		{"slash", "ali/ce", false},
		{"empty", "", false},
		{"too_long", strings.Repeat("a", validate.MaxUsernameLen+1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Username("username", tt.value)
			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

type signupDTO struct {
	Username string `json:"username" validate:"required,max=150,username"`
	Email    string `json:"email"    validate:"required,email,max=254"`
	Score    int    `json:"score"    validate:"gte=1,lte=10"`
}

/*
TestStruct maps tag failures to JSON field names.
*/
func TestStruct(t *testing.T) {
	assert.NoError(t, validate.Struct(signupDTO{Username: "alice", Email: "a@x.com", Score: 9}))

	err := validate.Struct(signupDTO{Username: "bad name", Email: "nope", Score: 11})
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, apperr.CodeValidation, ae.Code)

	fields := map[string]string{}
	for _, detail := range ae.Details {
		fields[detail.Field] = detail.Message
	}
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "email")
	assert.Equal(t, "Must be less than or equal to 10", fields["score"])
}

/*
TestValidator_Slug checks the slug rule, which accepts underscores and uppercase.
*/
func TestValidator_Slug(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		isValid bool
	}{
		{"plain", "drama", true},
		{"hyphen", "science-fiction", true},
		{"underscore", "sci_fi", true},
		{"uppercase", "Noir", true},
		{"space", "not a slug", false},
		{"punctuation", "sci.fi", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Slug("slug", tt.value)
			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}
