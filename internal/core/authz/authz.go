// Package authz implements the authorization decision engine: a pure function
// over (actor, action, target id) with no I/O, evaluated against an ordered
// rule table where the first matching rule wins.
package authz

import "github.com/projectx/accounts/internal/core/domain"

// Action identifies an operation on the account resource.
type Action string

const (
	ActionCreate   Action = "create"
	ActionList     Action = "list"
	ActionRetrieve Action = "retrieve"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionMe       Action = "me"
)

// Decision is the outcome of an authorization check.
type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

type predicate func(actor domain.Actor, targetID string) bool

func anyone(domain.Actor, string) bool { return true }

func authenticated(actor domain.Actor, _ string) bool { return actor.Authenticated }

func adminOnly(actor domain.Actor, _ string) bool {
	return actor.Authenticated && actor.IsAdmin
}

func adminOrSelf(actor domain.Actor, targetID string) bool {
	if !actor.Authenticated {
		return false
	}
	return actor.IsAdmin || actor.ID == targetID
}

type rule struct {
	actions []Action
	allow   predicate
}

func (r rule) covers(action Action) bool {
	for _, a := range r.actions {
		if a == action {
			return true
		}
	}
	return false
}

// rules is evaluated top to bottom; the first rule covering the action
// decides. The trailing catch-all keeps unknown actions authenticated-only.
var rules = []rule{
	{actions: []Action{ActionCreate}, allow: anyone},
	{actions: []Action{ActionList}, allow: adminOnly},
	{actions: []Action{ActionRetrieve, ActionUpdate, ActionDelete}, allow: adminOrSelf},
	{actions: []Action{ActionMe}, allow: authenticated},
}

var fallback = rule{allow: authenticated}

// Decide returns Allow or Deny for the actor performing action on the target
// account. targetID is empty for non-target-scoped actions (create, list, me).
func Decide(actor domain.Actor, action Action, targetID string) Decision {
	r := fallback
	for _, candidate := range rules {
		if candidate.covers(action) {
			r = candidate
			break
		}
	}
	if r.allow(actor, targetID) {
		return Allow
	}
	return Deny
}

// DenialError maps a Deny to the error the pipeline should surface:
// missing credentials are reported as an authentication failure, a valid
// credential that the rules reject as a permission failure.
func DenialError(actor domain.Actor) error {
	if !actor.Authenticated {
		return domain.ErrAuthRequired
	}
	return domain.ErrForbidden
}
