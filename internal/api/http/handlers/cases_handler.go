package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/case-service/internal/api/dto"
	"github.com/spec-kit/case-service/internal/auth"
	"github.com/spec-kit/case-service/internal/domain"
	"github.com/spec-kit/case-service/internal/service"
	apperrors "github.com/spec-kit/case-service/pkg/util/errorutil"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 5000
)

// CasesHandler exposes case endpoints.
type CasesHandler struct {
	cases      *service.CaseService
	assignment *service.AssignmentService
	stats      *service.StatsService
}

// NewCasesHandler constructs handler.
func NewCasesHandler(cases *service.CaseService, assignment *service.AssignmentService, stats *service.StatsService) *CasesHandler {
	return &CasesHandler{cases: cases, assignment: assignment, stats: stats}
}

// CreateCase POST /cases.
func (h *CasesHandler) CreateCase(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CreateCaseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validateText("title", req.Title, maxTitleLength); err != nil {
		return err
	}
	if err := validateText("description", req.Description, maxDescriptionLength); err != nil {
		return err
	}

	created, err := h.cases.CreateCase(c.UserContext(), actor, service.CaseCreateInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCaseResponse(created)})
}

// ListCases GET /cases.
func (h *CasesHandler) ListCases(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	filter, err := parseCaseQuery(c)
	if err != nil {
		return err
	}

	page, err := h.cases.ListCases(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": dto.NewCaseListResponse(page.Items),
		"meta": dto.NewPageMetaResponse(page.Meta),
	})
}

// GetCase GET /cases/:id.
func (h *CasesHandler) GetCase(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	caseID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	found, err := h.cases.GetCase(c.UserContext(), actor, caseID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCaseResponse(found)})
}

// ListHistory GET /cases/:id/history.
func (h *CasesHandler) ListHistory(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	caseID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	entries, err := h.cases.ListHistory(c.UserContext(), actor, caseID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCaseHistoryListResponse(entries)})
}

// AssignCase PATCH /cases/:id/assign.
func (h *CasesHandler) AssignCase(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	caseID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.AssignCaseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if _, err := uuid.Parse(strings.TrimSpace(req.UserID)); err != nil {
		return apperrors.NewValidationError("userId must be a UUID", map[string]any{"field": "userId"})
	}

	updated, err := h.assignment.AssignCase(c.UserContext(), actor, caseID, strings.TrimSpace(req.UserID))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCaseResponse(updated)})
}

// UpdateStatus PATCH /cases/:id/status.
func (h *CasesHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	caseID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Status) == "" {
		return apperrors.NewValidationError("status required", map[string]any{"field": "status"})
	}

	updated, err := h.cases.UpdateStatus(c.UserContext(), actor, caseID, strings.TrimSpace(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCaseResponse(updated)})
}

// ListStatuses GET /cases/statuses.
func (h *CasesHandler) ListStatuses(c *fiber.Ctx) error {
	statuses, err := h.cases.ListStatuses(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCaseStatusListResponse(statuses)})
}

// StatusCounts GET /cases/status-counts.
func (h *CasesHandler) StatusCounts(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	counts, err := h.stats.StatusCounts(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStatusCountsResponse(counts)})
}

// AssignableUsers GET /cases/users.
func (h *CasesHandler) AssignableUsers(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	users, err := h.assignment.AssignableUsers(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserSummaryList(users)})
}

// UserStats GET /cases/stats/:userId.
func (h *CasesHandler) UserStats(c *fiber.Ctx) error {
	userID, err := uuidParam(c, "userId")
	if err != nil {
		return err
	}
	stats, err := h.stats.UserStats(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserStatsResponse(stats)})
}

func parseCaseQuery(c *fiber.Ctx) (service.CaseListFilter, error) {
	filter := service.CaseListFilter{}
	page, err := parsePositiveInt(c.Query("page"), "page", 1, 0)
	if err != nil {
		return filter, err
	}
	limit, err := parsePositiveInt(c.Query("limit"), "limit", domain.DefaultPageLimit, domain.MaxPageLimit)
	if err != nil {
		return filter, err
	}
	filter.Page = page
	filter.Limit = limit
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		filter.Status = &status
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filter.Search = &search
	}
	return filter, nil
}

// parsePositiveInt reads an integer query value in [1, upper]. A zero upper means unbounded.
func parsePositiveInt(val, field string, def, upper int) (int, error) {
	if val == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 1 || (upper > 0 && parsed > upper) {
		details := map[string]any{"field": field, "min": 1}
		if upper > 0 {
			details["max"] = upper
		}
		return 0, apperrors.NewValidationError(field+" out of range", details)
	}
	return parsed, nil
}

func uuidParam(c *fiber.Ctx, name string) (string, error) {
	value := c.Params(name)
	if _, err := uuid.Parse(value); err != nil {
		return "", apperrors.NewValidationError(name+" must be a UUID", map[string]any{"field": name})
	}
	return value, nil
}

func validateText(field, value string, upper int) error {
	length := utf8.RuneCountInString(strings.TrimSpace(value))
	if length == 0 || length > upper {
		return apperrors.NewValidationError(field+" must be between 1 and "+strconv.Itoa(upper)+" characters",
			map[string]any{"field": field})
	}
	return nil
}
