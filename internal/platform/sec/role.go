// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import "fmt"

// # User Roles

// Role represents the authorization level granted to an account.
//
// The set is closed: the zero value is not a valid role and [ParseRole]
// rejects anything outside [RoleUser], [RoleModerator] and [RoleAdmin].
type Role uint8

const (
	// Default role for registered users
	RoleUser Role = iota + 1

	// Can edit and delete any review or comment
	RoleModerator

	// Unrestricted access to the catalog and user management
	RoleAdmin
)

var roleNames = map[Role]string{
	RoleUser:      "user",
	RoleModerator: "moderator",
	RoleAdmin:     "admin",
}

// ParseRole maps the stored or transmitted name to a [Role].
func ParseRole(name string) (Role, error) {
	for role, roleName := range roleNames {
		if roleName == name {
			return role, nil
		}
	}
	return 0, fmt.Errorf("sec: unknown role %q", name)
}

// String returns the wire name of the role.
func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Role(%d)", uint8(r))
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// MarshalText implements [encoding.TextMarshaler].
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("sec: cannot marshal invalid role %d", uint8(r))
	}
	return []byte(roleNames[r]), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (r *Role) UnmarshalText(text []byte) error {
	role, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = role
	return nil
}

// # Capabilities

// Capability names a class of privileged operations.
type Capability uint8

const (
	// ModerateContent allows editing and deleting other users' reviews and comments.
	ModerateContent Capability = iota + 1

	// ManageCatalog allows writing categories, genres and titles.
	ManageCatalog

	// ManageUsers allows the user administration endpoints.
	ManageUsers
)

// capabilities is the single source of truth for what each role may do.
// The staff flag grants every capability and is handled by [Identity.Can].
var capabilities = map[Role][]Capability{
	RoleUser:      nil,
	RoleModerator: {ModerateContent},
	RoleAdmin:     {ModerateContent, ManageCatalog, ManageUsers},
}

// Can reports whether the role grants the capability.
func (r Role) Can(capability Capability) bool {
	for _, granted := range capabilities[r] {
		if granted == capability {
			return true
		}
	}
	return false
}

func (c Capability) String() string {
	switch c {
	case ModerateContent:
		return "moderate_content"
	case ManageCatalog:
		return "manage_catalog"
	case ManageUsers:
		return "manage_users"
	default:
		return fmt.Sprintf("Capability(%d)", uint8(c))
	}
}
