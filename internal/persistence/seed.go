package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/case-service/internal/domain"
	"github.com/spec-kit/case-service/internal/repository"
)

// Fixed identities of the demo users offered by the login stub.
const (
	DemoAdminID      = "11111111-1111-4111-8111-111111111111"
	DemoSupervisorID = "22222222-2222-4222-8222-222222222222"
	DemoAgentID      = "33333333-3333-4333-8333-333333333333"
)

// DemoUsers returns the seeded users.
func DemoUsers() []domain.User {
	return []domain.User{
		{ID: DemoAdminID, Name: "John", Role: domain.RoleAdmin},
		{ID: DemoSupervisorID, Name: "Bob", Role: domain.RoleSupervisor},
		{ID: DemoAgentID, Name: "Sam", Role: domain.RoleAgent},
	}
}

// SeedRepositories groups the stores touched by seeding.
type SeedRepositories struct {
	Users    repository.UserRepository
	Statuses repository.CaseStatusRepository
	Cases    repository.CaseRepository
}

// Seed installs the status catalog, demo users and an example case. It is idempotent.
func Seed(ctx context.Context, repos SeedRepositories, logger *zap.Logger) error {
	if err := repos.Statuses.Ensure(ctx, domain.CaseStatusNames); err != nil {
		return fmt.Errorf("seed statuses: %w", err)
	}

	for _, user := range DemoUsers() {
		user := user
		if err := repos.Users.Upsert(ctx, &user); err != nil {
			return fmt.Errorf("seed user %s: %w", user.Name, err)
		}
	}

	existing, err := repos.Cases.Count(ctx, repository.CaseFilter{})
	if err != nil {
		return fmt.Errorf("count cases: %w", err)
	}
	if existing > 0 {
		logger.Info("seed complete", zap.Int("existing_cases", existing))
		return nil
	}

	statuses, err := repos.Statuses.List(ctx)
	if err != nil {
		return fmt.Errorf("list statuses: %w", err)
	}
	initial, ok := domain.FindStatus(statuses, domain.CaseStatusToBeReviewed)
	if !ok {
		return fmt.Errorf("status %s missing after seeding", domain.CaseStatusToBeReviewed)
	}

	assignee, assigner := DemoSupervisorID, DemoAdminID
	example := &domain.Case{
		Title:       "Initial Case Example",
		Description: "Sample case created by John and assigned to Bob",
		CreatedBy:   DemoAdminID,
		AssignedTo:  &assignee,
		AssignedBy:  &assigner,
		StatusID:    initial.ID,
	}
	if err := repos.Cases.Create(ctx, example); err != nil {
		return fmt.Errorf("seed example case: %w", err)
	}

	logger.Info("seed complete", zap.String("example_case_id", example.ID))
	return nil
}
