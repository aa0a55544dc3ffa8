package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/case-service/internal/domain"
	"github.com/spec-kit/case-service/internal/events"
	"github.com/spec-kit/case-service/internal/persistence"
	"github.com/spec-kit/case-service/internal/repository/memstore"
)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) ofType(t events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	ctx        context.Context
	store      *memstore.Store
	cases      *CaseService
	assign     *AssignmentService
	stats      *StatsService
	recorded   *recorder
	admin      domain.Actor
	supervisor domain.Actor
	agent      domain.Actor
}

func newFixture(t *testing.T, policy TransitionPolicy) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memstore.New()
	require.NoError(t, persistence.Seed(ctx, persistence.SeedRepositories{
		Users:    store.Users(),
		Statuses: store.Statuses(),
		Cases:    store.Cases(),
	}, zap.NewNop()))

	dispatcher := events.NewInMemoryDispatcher()
	rec := &recorder{}
	for _, et := range []events.EventType{events.EventCaseCreated, events.EventCaseAssigned, events.EventCaseStatusChanged} {
		dispatcher.Subscribe(et, rec.handle)
	}

	return &fixture{
		ctx:   ctx,
		store: store,
		cases: NewCaseService(CaseDependencies{
			CaseRepo:    store.Cases(),
			HistoryRepo: store.History(),
			Statuses:    store.Statuses(),
			Policy:      policy,
			Dispatcher:  dispatcher,
			Logger:      zap.NewNop(),
		}),
		assign: NewAssignmentService(AssignmentDependencies{
			CaseRepo:   store.Cases(),
			UserRepo:   store.Users(),
			Dispatcher: dispatcher,
			Logger:     zap.NewNop(),
		}),
		stats: NewStatsService(StatsDependencies{
			CaseRepo: store.Cases(),
			UserRepo: store.Users(),
			Statuses: store.Statuses(),
		}),
		recorded:   rec,
		admin:      domain.Actor{ID: persistence.DemoAdminID, Name: "John", Role: domain.RoleAdmin},
		supervisor: domain.Actor{ID: persistence.DemoSupervisorID, Name: "Bob", Role: domain.RoleSupervisor},
		agent:      domain.Actor{ID: persistence.DemoAgentID, Name: "Sam", Role: domain.RoleAgent},
	}
}

func (f *fixture) addUser(t *testing.T, name string, role domain.Role) domain.Actor {
	t.Helper()
	user := domain.User{ID: uuid.NewString(), Name: name, Role: role}
	require.NoError(t, f.store.Users().Upsert(f.ctx, &user))
	return user.Actor()
}

func (f *fixture) createCase(t *testing.T, title string) *domain.Case {
	t.Helper()
	c, err := f.cases.CreateCase(f.ctx, f.admin, CaseCreateInput{Title: title, Description: title + " details"})
	require.NoError(t, err)
	return c
}

func (f *fixture) createAssigned(t *testing.T, title string, assignee domain.Actor) *domain.Case {
	t.Helper()
	c := f.createCase(t, title)
	assigned, err := f.assign.AssignCase(f.ctx, f.admin, c.ID, assignee.ID)
	require.NoError(t, err)
	return assigned
}
