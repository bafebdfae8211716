// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package authz

import "net/http"

// Action is the operation a request performs on a resource.
type Action string

const (
	ActionList          Action = "list"
	ActionRetrieve      Action = "retrieve"
	ActionCreate        Action = "create"
	ActionUpdate        Action = "update"
	ActionPartialUpdate Action = "partial_update"
	ActionDestroy       Action = "destroy"
)

// ActionFromMethod maps an HTTP method to an [Action].
//
// hasID tells whether the route addresses a single object. Unknown methods
// report false.
func ActionFromMethod(method string, hasID bool) (Action, bool) {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		if hasID {
			return ActionRetrieve, true
		}
		return ActionList, true
	case http.MethodPost:
		if hasID {
			return "", false
		}
		return ActionCreate, true
	case http.MethodPut:
		return ActionUpdate, hasID
	case http.MethodPatch:
		return ActionPartialUpdate, hasID
	case http.MethodDelete:
		return ActionDestroy, hasID
	default:
		return "", false
	}
}

// IsSafeMethod reports whether the method is a read-only verb.
func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

// IsSafe reports whether the action only reads.
func (a Action) IsSafe() bool {
	return a == ActionList || a == ActionRetrieve
}
