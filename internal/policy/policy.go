// Package policy decides who may read, comment on, accept and progress a case.
// Every function is pure; callers load the case and the caller's roles first.
package policy

import (
	"errors"
	"slices"

	"github.com/google/uuid"

	"github.com/aldoetobex/legal-case-backend/pkg/models"
)

// ErrForbidden means the caller is known and the case exists, but access is denied.
var ErrForbidden = errors.New("policy: forbidden")

// Caller is the authenticated identity a request acts as.
type Caller struct {
	ID    uuid.UUID
	Roles []models.Role
}

// CallerOf builds a Caller from a loaded user record.
func CallerOf(u *models.User) Caller {
	return Caller{ID: u.ID, Roles: u.RoleList()}
}

func (c Caller) Has(r models.Role) bool { return slices.Contains(c.Roles, r) }

// HasAny reports whether the caller holds at least one of rs.
func (c Caller) HasAny(rs ...models.Role) bool {
	for _, r := range rs {
		if c.Has(r) {
			return true
		}
	}
	return false
}

func (c Caller) IsAdmin() bool { return c.Has(models.RoleAdmin) }

func ownsCase(c Caller, cs *models.Case) bool {
	return c.Has(models.RoleClient) && cs.ClientID == c.ID
}

func assignedTo(c Caller, cs *models.Case) bool {
	return c.Has(models.RoleLawyer) && cs.IsAssignedTo(c.ID)
}

// CanReadCase: admin, the owning client, or the assigned lawyer.
// Multi-role callers pass when any one of their roles grants access.
func CanReadCase(c Caller, cs *models.Case) bool {
	if c.IsAdmin() {
		return true
	}
	return ownsCase(c, cs) || assignedTo(c, cs)
}

// CommentRole returns the role a comment is recorded under, and false when
// the caller may not comment at all. Precedence: admin, owner, assigned lawyer.
func CommentRole(c Caller, cs *models.Case) (models.Role, bool) {
	switch {
	case c.IsAdmin():
		return models.RoleAdmin, true
	case ownsCase(c, cs):
		return models.RoleClient, true
	case assignedTo(c, cs):
		return models.RoleLawyer, true
	}
	return "", false
}

// CanAccept only checks the role; Pending/unassigned is enforced by the store.
func CanAccept(c Caller) bool { return c.Has(models.RoleLawyer) }

// CanUpdateStatus requires the lawyer currently assigned to cs.
func CanUpdateStatus(c Caller, cs *models.Case) bool { return assignedTo(c, cs) }

func CanListOwnCases(c Caller) bool { return c.Has(models.RoleClient) }

// CanListAvailable needs no ownership check; the listing only holds unassigned cases.
func CanListAvailable(c Caller) bool { return c.Has(models.RoleLawyer) }
