// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package authz

import "github.com/taibuivan/yamdb/internal/platform/sec"

// Permission is a predicate over (actor, method, optional target object).
//
// HasPermission runs first and decides on the method alone.
// HasObjectPermission runs only for requests addressing an existing object,
// with the id of the user owning it.
type Permission interface {
	HasPermission(identity *sec.Identity, method string) bool
	HasObjectPermission(identity *sec.Identity, method string, ownerID string) bool
}

type permissionFuncs struct {
	method func(identity *sec.Identity, method string) bool
	object func(identity *sec.Identity, method string, ownerID string) bool
}

func (p permissionFuncs) HasPermission(identity *sec.Identity, method string) bool {
	return p.method(identity, method)
}

func (p permissionFuncs) HasObjectPermission(identity *sec.Identity, method string, ownerID string) bool {
	if p.object == nil {
		return true
	}
	return p.object(identity, method, ownerID)
}

var (
	// IsAuthenticated allows any signed-in actor.
	IsAuthenticated Permission = permissionFuncs{
		method: func(identity *sec.Identity, _ string) bool { return identity != nil },
	}

	// AdminOnly allows role admin or the staff flag, for every method.
	AdminOnly Permission = permissionFuncs{
		method: func(identity *sec.Identity, _ string) bool { return identity.IsAdmin() },
	}

	// ReadOnlyOrAdmin allows safe methods to anyone and writes to admins.
	ReadOnlyOrAdmin Permission = permissionFuncs{
		method: func(identity *sec.Identity, method string) bool {
			return IsSafeMethod(method) || identity.IsAdmin()
		},
	}

	// ReviewOrCommentAccess allows reads to anyone, creation to signed-in
	// actors, and changes to the author or a moderator.
	ReviewOrCommentAccess Permission = permissionFuncs{
		method: func(identity *sec.Identity, method string) bool {
			return IsSafeMethod(method) || identity != nil
		},
		object: func(identity *sec.Identity, method string, ownerID string) bool {
			if IsSafeMethod(method) {
				return true
			}
			return identity.Owns(ownerID) || identity.Can(sec.ModerateContent)
		},
	}
)

// All composes permissions with logical AND.
func All(permissions ...Permission) Permission {
	return permissionFuncs{
		method: func(identity *sec.Identity, method string) bool {
			for _, permission := range permissions {
				if !permission.HasPermission(identity, method) {
					return false
				}
			}
			return true
		},
		object: func(identity *sec.Identity, method string, ownerID string) bool {
			for _, permission := range permissions {
				if !permission.HasObjectPermission(identity, method, ownerID) {
					return false
				}
			}
			return true
		},
	}
}
