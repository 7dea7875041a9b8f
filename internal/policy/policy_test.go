package policy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/aldoetobex/legal-case-backend/pkg/models"
)

func caller(id uuid.UUID, roles ...models.Role) Caller { return Caller{ID: id, Roles: roles} }

func TestCanReadCase(t *testing.T) {
	clientID, lawyerID, other := uuid.New(), uuid.New(), uuid.New()
	cs := &models.Case{ClientID: clientID, AssignedLawyerID: &lawyerID, Status: models.StatusAssigned}
	pending := &models.Case{ClientID: clientID, Status: models.StatusPending}

	tests := []struct {
		name string
		c    Caller
		cs   *models.Case
		want bool
	}{
		{"admin reads anything", caller(other, models.RoleAdmin), cs, true},
		{"owner reads own case", caller(clientID, models.RoleClient), cs, true},
		{"other client denied", caller(other, models.RoleClient), cs, false},
		{"assigned lawyer reads", caller(lawyerID, models.RoleLawyer), cs, true},
		{"unassigned lawyer denied", caller(other, models.RoleLawyer), cs, false},
		{"lawyer cannot read pending detail", caller(other, models.RoleLawyer), pending, false},
		{"no roles denied", caller(clientID), cs, false},
		// id matches the owner but the client role is missing
		{"lawyer id equal to owner denied", caller(clientID, models.RoleLawyer), cs, false},
		{"multi-role passes via any role", caller(lawyerID, models.RoleClient, models.RoleLawyer), cs, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanReadCase(tt.c, tt.cs))
		})
	}
}

func TestCommentRole_Precedence(t *testing.T) {
	clientID, lawyerID := uuid.New(), uuid.New()
	cs := &models.Case{ClientID: clientID, AssignedLawyerID: &lawyerID}

	role, ok := CommentRole(caller(clientID, models.RoleClient, models.RoleAdmin), cs)
	assert.True(t, ok)
	assert.Equal(t, models.RoleAdmin, role)

	role, ok = CommentRole(caller(clientID, models.RoleClient), cs)
	assert.True(t, ok)
	assert.Equal(t, models.RoleClient, role)

	role, ok = CommentRole(caller(lawyerID, models.RoleLawyer), cs)
	assert.True(t, ok)
	assert.Equal(t, models.RoleLawyer, role)

	_, ok = CommentRole(caller(uuid.New(), models.RoleLawyer, models.RoleClient), cs)
	assert.False(t, ok)
}

func TestCanUpdateStatus(t *testing.T) {
	lawyerID := uuid.New()
	cs := &models.Case{ClientID: uuid.New(), AssignedLawyerID: &lawyerID}

	assert.True(t, CanUpdateStatus(caller(lawyerID, models.RoleLawyer), cs))
	assert.False(t, CanUpdateStatus(caller(uuid.New(), models.RoleLawyer), cs))
	assert.False(t, CanUpdateStatus(caller(uuid.New(), models.RoleAdmin), cs))
	assert.False(t, CanUpdateStatus(caller(lawyerID, models.RoleLawyer), &models.Case{}))
}

func TestRoleGates(t *testing.T) {
	id := uuid.New()
	assert.True(t, CanAccept(caller(id, models.RoleLawyer)))
	assert.False(t, CanAccept(caller(id, models.RoleClient)))
	assert.True(t, CanListAvailable(caller(id, models.RoleClient, models.RoleLawyer)))
	assert.False(t, CanListAvailable(caller(id, models.RoleAdmin)))
	assert.True(t, CanListOwnCases(caller(id, models.RoleClient)))
	assert.False(t, CanListOwnCases(caller(id, models.RoleLawyer)))
}

func TestCallerOf(t *testing.T) {
	u := &models.User{ID: uuid.New(), Roles: []string{"client", "admin"}}
	c := CallerOf(u)
	assert.Equal(t, u.ID, c.ID)
	assert.True(t, c.IsAdmin())
	assert.True(t, c.HasAny(models.RoleLawyer, models.RoleClient))
	assert.False(t, c.HasAny(models.RoleLawyer))
}
