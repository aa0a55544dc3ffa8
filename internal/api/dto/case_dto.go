package dto

import (
	"time"

	"github.com/samber/lo"

	"github.com/spec-kit/case-service/internal/domain"
	"github.com/spec-kit/case-service/internal/service"
)

// CreateCaseRequest payload.
type CreateCaseRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// AssignCaseRequest payload.
type AssignCaseRequest struct {
	UserID string `json:"userId"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// CaseStatusResponse is a status catalog entry.
type CaseStatusResponse struct {
	ID   int                   `json:"id"`
	Name domain.CaseStatusName `json:"name"`
}

// CaseResponse is a case with its related records expanded.
type CaseResponse struct {
	ID           string             `json:"id"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
	CreatedBy    string             `json:"createdBy"`
	AssignedTo   *string            `json:"assignedTo"`
	AssignedBy   *string            `json:"assignedBy"`
	StatusID     int                `json:"statusId"`
	Creator      *UserSummary       `json:"creator"`
	AssignedUser *UserSummary       `json:"assignedUser"`
	Assigner     *UserSummary       `json:"assigner"`
	Status       CaseStatusResponse `json:"status"`
}

// PageMetaResponse describes a page of results.
type PageMetaResponse struct {
	Total           int  `json:"total"`
	Page            int  `json:"page"`
	Limit           int  `json:"limit"`
	TotalPages      int  `json:"totalPages"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// StatusCountResponse is one status bucket.
type StatusCountResponse struct {
	Status domain.CaseStatusName `json:"status"`
	Count  int                   `json:"count"`
}

// StatusCountsResponse counts visible cases per status.
type StatusCountsResponse struct {
	Total    int                   `json:"total"`
	ByStatus []StatusCountResponse `json:"byStatus"`
}

// UserStatsResponse summarizes a user's workload.
type UserStatsResponse struct {
	UserID        string                `json:"userId"`
	UserName      string                `json:"userName"`
	TotalAssigned int                   `json:"totalAssigned"`
	TotalCreated  int                   `json:"totalCreated"`
	ByStatus      []StatusCountResponse `json:"byStatus"`
}

// CaseHistoryResponse is one audit entry.
type CaseHistoryResponse struct {
	ID         string                `json:"id"`
	CaseID     string                `json:"caseId"`
	ActorID    string                `json:"actorId"`
	ChangeType domain.CaseChangeType `json:"changeType"`
	OldValue   map[string]any        `json:"oldValue"`
	NewValue   map[string]any        `json:"newValue"`
	CreatedAt  time.Time             `json:"createdAt"`
}

// NewCaseResponse maps a domain case.
func NewCaseResponse(c *domain.Case) CaseResponse {
	return CaseResponse{
		ID:           c.ID,
		Title:        c.Title,
		Description:  c.Description,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		CreatedBy:    c.CreatedBy,
		AssignedTo:   c.AssignedTo,
		AssignedBy:   c.AssignedBy,
		StatusID:     c.StatusID,
		Creator:      newUserSummaryPtr(c.Creator),
		AssignedUser: newUserSummaryPtr(c.AssignedUser),
		Assigner:     newUserSummaryPtr(c.Assigner),
		Status:       NewCaseStatusResponse(c.Status),
	}
}

// NewCaseListResponse maps a slice of cases.
func NewCaseListResponse(cases []domain.Case) []CaseResponse {
	return lo.Map(cases, func(c domain.Case, _ int) CaseResponse {
		return NewCaseResponse(&c)
	})
}

// NewCaseStatusResponse maps a status.
func NewCaseStatusResponse(status domain.CaseStatus) CaseStatusResponse {
	return CaseStatusResponse{ID: status.ID, Name: status.Name}
}

// NewCaseStatusListResponse maps the catalog.
func NewCaseStatusListResponse(statuses []domain.CaseStatus) []CaseStatusResponse {
	return lo.Map(statuses, func(s domain.CaseStatus, _ int) CaseStatusResponse {
		return NewCaseStatusResponse(s)
	})
}

// NewPageMetaResponse maps page metadata.
func NewPageMetaResponse(meta domain.PageMeta) PageMetaResponse {
	return PageMetaResponse{
		Total:           meta.Total,
		Page:            meta.Page,
		Limit:           meta.Limit,
		TotalPages:      meta.TotalPages,
		HasNextPage:     meta.HasNextPage,
		HasPreviousPage: meta.HasPreviousPage,
	}
}

// NewStatusCountsResponse maps visible status counts.
func NewStatusCountsResponse(counts *service.StatusCounts) StatusCountsResponse {
	return StatusCountsResponse{Total: counts.Total, ByStatus: newStatusCountList(counts.ByStatus)}
}

// NewUserStatsResponse maps user stats.
func NewUserStatsResponse(stats *service.UserStats) UserStatsResponse {
	return UserStatsResponse{
		UserID:        stats.UserID,
		UserName:      stats.UserName,
		TotalAssigned: stats.TotalAssigned,
		TotalCreated:  stats.TotalCreated,
		ByStatus:      newStatusCountList(stats.ByStatus),
	}
}

// NewCaseHistoryListResponse maps audit entries.
func NewCaseHistoryListResponse(entries []domain.CaseHistory) []CaseHistoryResponse {
	return lo.Map(entries, func(h domain.CaseHistory, _ int) CaseHistoryResponse {
		return CaseHistoryResponse{
			ID:         h.ID,
			CaseID:     h.CaseID,
			ActorID:    h.ActorID,
			ChangeType: h.ChangeType,
			OldValue:   h.OldValue,
			NewValue:   h.NewValue,
			CreatedAt:  h.CreatedAt,
		}
	})
}

func newStatusCountList(items []service.StatusCount) []StatusCountResponse {
	return lo.Map(items, func(item service.StatusCount, _ int) StatusCountResponse {
		return StatusCountResponse{Status: item.Status, Count: item.Count}
	})
}
