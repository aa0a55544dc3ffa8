package service

import "github.com/spec-kit/case-service/internal/domain"

// TransitionPolicy decides whether a status change is permitted.
type TransitionPolicy interface {
	Allow(from, to domain.CaseStatusName) bool
}

// FreeTransitions allows any status to follow any other.
type FreeTransitions struct{}

func (FreeTransitions) Allow(_, _ domain.CaseStatusName) bool { return true }

// ForwardOnlyTransitions allows staying put or moving later in the lifecycle.
type ForwardOnlyTransitions struct{}

func (ForwardOnlyTransitions) Allow(from, to domain.CaseStatusName) bool {
	fromStep, toStep := from.Step(), to.Step()
	if fromStep < 0 || toStep < 0 {
		return false
	}
	return toStep >= fromStep
}

// NewTransitionPolicy selects the workflow configured for the deployment.
func NewTransitionPolicy(forwardOnly bool) TransitionPolicy {
	if forwardOnly {
		return ForwardOnlyTransitions{}
	}
	return FreeTransitions{}
}
