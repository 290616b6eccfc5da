// Package store implements all persistence and the transactional rules that
// go with it: household membership, recipe access grants, the ingredient
// catalog, and shopping-list aggregation. Plain single-row lookups return
// (nil, nil) when the row is absent; multi-step operations report typed
// failures through the sentinel errors below so handlers can map them to
// responses without seeing storage detail.
package store

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when an operation's target entity does not exist,
// such as joining with an unknown invite code or generating a shopping list
// from a missing meal plan.
var ErrNotFound = errors.New("not found")

// ErrAlreadyMember is returned when a user who already belongs to a household
// tries to join another one. Membership is exclusive; the user must leave
// first.
var ErrAlreadyMember = errors.New("already a household member")

// isUniqueViolation reports whether err is a sqlite unique-constraint
// failure. Invite-code issuance and catalog creation treat this as "lost a
// race", never as a caller-visible error.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isUniqueViolationOn narrows isUniqueViolation to the named column, such as
// "households.invite_code". Sqlite spells the violated column in the error
// text, which lets callers tell a code collision from a duplicate membership.
func isUniqueViolationOn(err error, column string) bool {
	return isUniqueViolation(err) && strings.Contains(err.Error(), column)
}
