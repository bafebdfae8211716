// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package authz decides who may perform which action on which resource.

It offers two views of the same rules:

  - Predicates ([Permission]) that mirror the composable permission classes
    of the API: [IsAuthenticated], [AdminOnly], [ReadOnlyOrAdmin] and
    [ReviewOrCommentAccess], joined with [All].
  - Policies ([Policy]) that resolve each [Action] to exactly one [Rule]
    through an explicit table. Handlers and services check policies; the
    predicates exist so the tables can be verified against them.

Evaluation always runs the action-level check before the object-level one.
*/
package authz

import (
	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/sec"
)

type ruleKind uint8

const (
	rulePublic ruleKind = iota + 1
	ruleAuthenticated
	ruleCapability
	ruleOwnerOr
)

// Rule is the requirement attached to one action of a [Policy].
type Rule struct {
	kind       ruleKind
	capability sec.Capability
}

// Public allows anonymous actors.
func Public() Rule { return Rule{kind: rulePublic} }

// Authenticated requires a signed-in actor.
func Authenticated() Rule { return Rule{kind: ruleAuthenticated} }

// Capability requires the actor to hold c.
func Capability(c sec.Capability) Rule { return Rule{kind: ruleCapability, capability: c} }

// OwnerOr requires a signed-in actor who owns the object or holds c.
func OwnerOr(c sec.Capability) Rule { return Rule{kind: ruleOwnerOr, capability: c} }

// Policy maps every allowed action of a resource to its rule.
// Actions missing from the table are denied.
type Policy struct {
	Name  string
	Rules map[Action]Rule
}

// Check runs the action-level decision.
//
// It returns nil, [apperr.Unauthorized] when the rule needs an identity and
// the request is anonymous, or [apperr.Forbidden].
func (p Policy) Check(identity *sec.Identity, action Action) error {
	rule, ok := p.Rules[action]
	if !ok {
		return denied(identity)
	}

	switch rule.kind {
	case rulePublic:
		return nil
	case ruleAuthenticated, ruleOwnerOr:
		if identity == nil {
			return errAuthRequired()
		}
		return nil
	case ruleCapability:
		if identity.Can(rule.capability) {
			return nil
		}
		return denied(identity)
	default:
		return denied(identity)
	}
}

// CheckObject runs [Policy.Check] and then the object-level decision for an
// object owned by ownerID.
func (p Policy) CheckObject(identity *sec.Identity, action Action, ownerID string) error {
	if err := p.Check(identity, action); err != nil {
		return err
	}

	rule := p.Rules[action]
	if rule.kind != ruleOwnerOr {
		return nil
	}

	if identity.Owns(ownerID) || identity.Can(rule.capability) {
		return nil
	}
	return denied(identity)
}

func denied(identity *sec.Identity) error {
	if identity == nil {
		return errAuthRequired()
	}
	return apperr.Forbidden("You do not have permission to perform this action")
}

func errAuthRequired() error {
	return apperr.Unauthorized("Authentication credentials were not provided")
}

// # Policies

// CatalogPolicy guards categories, genres and titles.
var CatalogPolicy = Policy{
	Name: "catalog",
	Rules: map[Action]Rule{
		ActionList:          Public(),
		ActionRetrieve:      Public(),
		ActionCreate:        Capability(sec.ManageCatalog),
		ActionUpdate:        Capability(sec.ManageCatalog),
		ActionPartialUpdate: Capability(sec.ManageCatalog),
		ActionDestroy:       Capability(sec.ManageCatalog),
	},
}

// ContentPolicy guards reviews and comments.
var ContentPolicy = Policy{
	Name: "content",
	Rules: map[Action]Rule{
		ActionList:          Public(),
		ActionRetrieve:      Public(),
		ActionCreate:        Authenticated(),
		ActionUpdate:        OwnerOr(sec.ModerateContent),
		ActionPartialUpdate: OwnerOr(sec.ModerateContent),
		ActionDestroy:       OwnerOr(sec.ModerateContent),
	},
}

// UserAdminPolicy guards the user management endpoints.
var UserAdminPolicy = Policy{
	Name: "user_admin",
	Rules: map[Action]Rule{
		ActionList:          Capability(sec.ManageUsers),
		ActionRetrieve:      Capability(sec.ManageUsers),
		ActionCreate:        Capability(sec.ManageUsers),
		ActionUpdate:        Capability(sec.ManageUsers),
		ActionPartialUpdate: Capability(sec.ManageUsers),
		ActionDestroy:       Capability(sec.ManageUsers),
	},
}

// SelfPolicy guards the own-profile endpoint.
var SelfPolicy = Policy{
	Name: "self",
	Rules: map[Action]Rule{
		ActionRetrieve:      Authenticated(),
		ActionUpdate:        Authenticated(),
		ActionPartialUpdate: Authenticated(),
	},
}
