package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/case-service/internal/domain"
	"github.com/spec-kit/case-service/internal/events"
	apperrors "github.com/spec-kit/case-service/pkg/util/errorutil"
)

func TestAssignCaseRoleMatrix(t *testing.T) {
	f := newFixture(t, nil)
	actors := map[domain.Role]domain.Actor{
		domain.RoleAdmin:      f.admin,
		domain.RoleSupervisor: f.supervisor,
		domain.RoleAgent:      f.agent,
	}
	targets := map[domain.Role]domain.Actor{
		domain.RoleAdmin:      f.addUser(t, "Ada", domain.RoleAdmin),
		domain.RoleSupervisor: f.addUser(t, "Sue", domain.RoleSupervisor),
		domain.RoleAgent:      f.addUser(t, "Al", domain.RoleAgent),
	}

	for _, actorRole := range domain.Roles {
		for _, targetRole := range domain.Roles {
			actor, target := actors[actorRole], targets[targetRole]
			c := f.createCase(t, string(actorRole)+"->"+string(targetRole))

			assigned, err := f.assign.AssignCase(f.ctx, actor, c.ID, target.ID)
			if actorRole.CanAssign(targetRole) {
				require.NoError(t, err, "%s -> %s", actorRole, targetRole)
				require.NotNil(t, assigned.AssignedTo)
				assert.Equal(t, target.ID, *assigned.AssignedTo)
				require.NotNil(t, assigned.AssignedBy)
				assert.Equal(t, actor.ID, *assigned.AssignedBy)
				continue
			}
			assert.True(t, apperrors.IsForbidden(err), "%s -> %s", actorRole, targetRole)
			stored, getErr := f.store.Cases().GetByID(f.ctx, c.ID)
			require.NoError(t, getErr)
			assert.Nil(t, stored.AssignedTo)
		}
	}
}

func TestReassignmentRecordsLatestAssigner(t *testing.T) {
	f := newFixture(t, nil)
	ann := f.addUser(t, "Ann", domain.RoleAgent)
	c := f.createAssigned(t, "reassign me", f.agent)

	reassigned, err := f.assign.AssignCase(f.ctx, f.supervisor, c.ID, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, ann.ID, *reassigned.AssignedTo)
	assert.Equal(t, f.supervisor.ID, *reassigned.AssignedBy)
	require.NotNil(t, reassigned.Assigner)
	assert.Equal(t, "Bob", reassigned.Assigner.Name)

	published := f.recorded.ofType(events.EventCaseAssigned)
	require.Len(t, published, 2)
	payload := published[1].Payload.(events.CaseAssignedPayload)
	require.NotNil(t, payload.PreviousAssigneeID)
	assert.Equal(t, f.agent.ID, *payload.PreviousAssigneeID)
	assert.Equal(t, domain.RoleAgent, payload.AssigneeRole)
}

func TestAssignCaseNotFound(t *testing.T) {
	f := newFixture(t, nil)
	c := f.createCase(t, "x")

	_, err := f.assign.AssignCase(f.ctx, f.admin, "00000000-0000-4000-8000-000000000000", f.agent.ID)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = f.assign.AssignCase(f.ctx, f.admin, c.ID, "00000000-0000-4000-8000-000000000000")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestAssignableUsers(t *testing.T) {
	f := newFixture(t, nil)
	f.addUser(t, "Alice", domain.RoleAgent)

	forAdmin, err := f.assign.AssignableUsers(f.ctx, f.admin)
	require.NoError(t, err)
	names := make([]string, 0, len(forAdmin))
	for _, u := range forAdmin {
		names = append(names, u.Name)
	}
	assert.Equal(t, []string{"Alice", "Bob", "Sam"}, names)

	forSupervisor, err := f.assign.AssignableUsers(f.ctx, f.supervisor)
	require.NoError(t, err)
	require.Len(t, forSupervisor, 2)
	for _, u := range forSupervisor {
		assert.Equal(t, domain.RoleAgent, u.Role)
	}

	forAgent, err := f.assign.AssignableUsers(f.ctx, f.agent)
	require.NoError(t, err)
	assert.Empty(t, forAgent)
}
