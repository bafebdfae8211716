// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// Identity is the authenticated actor of a request.
//
// It is rebuilt from the user directory on every authenticated request, so a
// role or staff change takes effect without re-issuing tokens.
type Identity struct {
	UserID   string
	Username string
	Role     Role
	IsStaff  bool
}

// Can reports whether the actor holds the capability.
// A nil identity (anonymous request) holds none.
func (identity *Identity) Can(capability Capability) bool {
	if identity == nil {
		return false
	}
	if identity.IsStaff {
		return true
	}
	return identity.Role.Can(capability)
}

// IsAdmin reports role == admin or the staff flag.
func (identity *Identity) IsAdmin() bool {
	if identity == nil {
		return false
	}
	return identity.IsStaff || identity.Role == RoleAdmin
}

// Owns reports whether the actor is the given user.
func (identity *Identity) Owns(ownerID string) bool {
	return identity != nil && ownerID != "" && identity.UserID == ownerID
}
