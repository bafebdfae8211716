// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package authz_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/authz"
	"github.com/taibuivan/yamdb/internal/platform/sec"
)

var (
	anonymous = (*sec.Identity)(nil)
	user      = &sec.Identity{UserID: "u-user", Username: "user", Role: sec.RoleUser}
	author    = &sec.Identity{UserID: "u-author", Username: "author", Role: sec.RoleUser}
	moderator = &sec.Identity{UserID: "u-mod", Username: "mod", Role: sec.RoleModerator}
	admin     = &sec.Identity{UserID: "u-admin", Username: "admin", Role: sec.RoleAdmin}
	staff     = &sec.Identity{UserID: "u-staff", Username: "staff", Role: sec.RoleUser, IsStaff: true}

	actors  = []*sec.Identity{anonymous, user, author, moderator, admin, staff}
	methods = []string{
		http.MethodGet, http.MethodHead, http.MethodOptions,
		http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete,
	}
)

func name(identity *sec.Identity) string {
	if identity == nil {
		return "anonymous"
	}
	return identity.Username
}

func TestActionFromMethod(t *testing.T) {
	tests := []struct {
		method string
		hasID  bool
		want   authz.Action
		ok     bool
	}{
		{http.MethodGet, false, authz.ActionList, true},
		{http.MethodGet, true, authz.ActionRetrieve, true},
		{http.MethodPost, false, authz.ActionCreate, true},
		{http.MethodPost, true, "", false},
		{http.MethodPut, true, authz.ActionUpdate, true},
		{http.MethodPatch, true, authz.ActionPartialUpdate, true},
		{http.MethodDelete, true, authz.ActionDestroy, true},
		{http.MethodDelete, false, authz.ActionDestroy, false},
		{"TRACE", false, "", false},
	}

	for _, tt := range tests {
		got, ok := authz.ActionFromMethod(tt.method, tt.hasID)
		assert.Equal(t, tt.ok, ok, "%s hasID=%v", tt.method, tt.hasID)
		if tt.ok {
			assert.Equal(t, tt.want, got)
		}
	}
}

func TestAdminOnly_DeniesPlainUsersForEveryMethod(t *testing.T) {
	for _, method := range methods {
		assert.False(t, authz.AdminOnly.HasPermission(user, method), method)
		assert.False(t, authz.AdminOnly.HasPermission(anonymous, method), method)
		assert.True(t, authz.AdminOnly.HasPermission(admin, method), method)
		assert.True(t, authz.AdminOnly.HasPermission(staff, method), method)
	}
}

func TestReadOnlyOrAdmin(t *testing.T) {
	for _, actor := range actors {
		for _, method := range methods {
			want := authz.IsSafeMethod(method) || actor.IsAdmin()
			assert.Equal(t, want, authz.ReadOnlyOrAdmin.HasPermission(actor, method), "%s %s", name(actor), method)
		}
	}
}

func TestReviewOrCommentAccess_NonAuthorCannotWrite(t *testing.T) {
	access := authz.ReviewOrCommentAccess

	// Reads pass for the stranger.
	assert.True(t, access.HasPermission(user, http.MethodGet))
	assert.True(t, access.HasObjectPermission(user, http.MethodGet, author.UserID))

	// Writes on someone else's object do not.
	for _, method := range []string{http.MethodPatch, http.MethodDelete} {
		assert.True(t, access.HasPermission(user, method))
		assert.False(t, access.HasObjectPermission(user, method, author.UserID), method)

		assert.True(t, access.HasObjectPermission(author, method, author.UserID), method)
		assert.True(t, access.HasObjectPermission(moderator, method, author.UserID), method)
		assert.True(t, access.HasObjectPermission(admin, method, author.UserID), method)
	}

	// Anonymous writes stop at the method check.
	assert.False(t, access.HasPermission(anonymous, http.MethodPost))
}

func TestAll_IsConjunction(t *testing.T) {
	stacked := authz.All(authz.ReadOnlyOrAdmin, authz.IsAuthenticated)

	assert.False(t, stacked.HasPermission(anonymous, http.MethodGet))
	assert.True(t, stacked.HasPermission(user, http.MethodGet))
	assert.False(t, stacked.HasPermission(user, http.MethodPost))
	assert.True(t, stacked.HasPermission(admin, http.MethodPost))

	assert.True(t, authz.All().HasPermission(anonymous, http.MethodDelete))
}

func TestPolicy_ErrorKinds(t *testing.T) {
	err := authz.CatalogPolicy.Check(anonymous, authz.ActionCreate)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeUnauthorized, apperr.As(err).Code)

	err = authz.CatalogPolicy.Check(user, authz.ActionCreate)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeForbidden, apperr.As(err).Code)

	assert.NoError(t, authz.CatalogPolicy.Check(anonymous, authz.ActionList))
	assert.NoError(t, authz.CatalogPolicy.Check(staff, authz.ActionDestroy))

	err = authz.SelfPolicy.Check(user, authz.ActionDestroy)
	assert.Equal(t, apperr.CodeForbidden, apperr.As(err).Code, "unlisted actions are denied")
}

// The policy tables must decide exactly like the stacked predicates.

func TestCatalogPolicy_AgreesWithPredicates(t *testing.T) {
	write := authz.All(authz.ReadOnlyOrAdmin, authz.IsAuthenticated, authz.AdminOnly)

	for _, actor := range actors {
		for _, method := range methods {
			for _, hasID := range []bool{false, true} {
				action, ok := authz.ActionFromMethod(method, hasID)
				if !ok {
					continue
				}

				predicate := authz.ReadOnlyOrAdmin.HasPermission(actor, method)
				if !authz.IsSafeMethod(method) {
					predicate = write.HasPermission(actor, method)
				}

				policy := authz.CatalogPolicy.Check(actor, action) == nil
				assert.Equal(t, predicate, policy, "%s %s hasID=%v", name(actor), method, hasID)
			}
		}
	}
}

func TestContentPolicy_AgreesWithPredicates(t *testing.T) {
	for _, actor := range actors {
		for _, method := range methods {
			action, ok := authz.ActionFromMethod(method, true)
			if !ok {
				continue
			}

			predicate := authz.ReviewOrCommentAccess.HasPermission(actor, method) &&
				authz.ReviewOrCommentAccess.HasObjectPermission(actor, method, author.UserID)

			policy := authz.ContentPolicy.CheckObject(actor, action, author.UserID) == nil
			assert.Equal(t, predicate, policy, "%s %s", name(actor), method)
		}

		create := authz.ReviewOrCommentAccess.HasPermission(actor, http.MethodPost)
		assert.Equal(t, create, authz.ContentPolicy.Check(actor, authz.ActionCreate) == nil, name(actor))
	}
}

func TestUserAdminPolicy_AgreesWithPredicates(t *testing.T) {
	stacked := authz.All(authz.IsAuthenticated, authz.AdminOnly)

	for _, actor := range actors {
		for _, method := range methods {
			for _, hasID := range []bool{false, true} {
				action, ok := authz.ActionFromMethod(method, hasID)
				if !ok {
					continue
				}
				policy := authz.UserAdminPolicy.Check(actor, action) == nil
				assert.Equal(t, stacked.HasPermission(actor, method), policy, "%s %s", name(actor), method)
			}
		}
	}
}
