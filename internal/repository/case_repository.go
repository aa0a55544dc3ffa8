package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/case-service/internal/domain"
)

// ErrAssigneeChanged is returned when a conditional write finds a different assignee.
var ErrAssigneeChanged = errors.New("case assignee changed")

// CaseFilter captures listing parameters. Nil fields do not filter.
type CaseFilter struct {
	AssigneeID *string
	StatusID   *int
	SearchTerm *string
	Limit      int
	Offset     int
}

// CaseRepository encapsulates case persistence.
type CaseRepository interface {
	Create(ctx context.Context, c *domain.Case) error
	GetByID(ctx context.Context, id string) (*domain.Case, error)
	List(ctx context.Context, filter CaseFilter) ([]domain.Case, error)
	Count(ctx context.Context, filter CaseFilter) (int, error)
	CountByStatus(ctx context.Context, assigneeID *string) (map[int]int, error)
	CountCreatedBy(ctx context.Context, userID string) (int, error)
	// Assign sets assigned_to and assigned_by unconditionally.
	Assign(ctx context.Context, id, assigneeID, assignedBy string) error
	// UpdateStatus writes the status only while expectedAssignee still holds the case.
	UpdateStatus(ctx context.Context, id string, statusID int, expectedAssignee string) error
}

type caseRepository struct {
	pool *pgxpool.Pool
}

// NewCaseRepository instantiates repository.
func NewCaseRepository(pool *pgxpool.Pool) CaseRepository {
	return &caseRepository{pool: pool}
}

const caseSelect = `
        SELECT c.id::text, c.title, c.description, c.created_at, c.updated_at,
               c.created_by::text, c.assigned_to::text, c.assigned_by::text, c.status_id,
               s.name,
               cr.name, cr.role,
               au.name, au.role,
               ab.name, ab.role
        FROM cases c
        JOIN case_statuses s ON s.id = c.status_id
        JOIN users cr ON cr.id = c.created_by
        LEFT JOIN users au ON au.id = c.assigned_to
        LEFT JOIN users ab ON ab.id = c.assigned_by`

func (r *caseRepository) Create(ctx context.Context, c *domain.Case) error {
	const query = `
        INSERT INTO cases (title, description, created_by, assigned_to, assigned_by, status_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id::text, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		c.Title,
		c.Description,
		c.CreatedBy,
		c.AssignedTo,
		c.AssignedBy,
		c.StatusID,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *caseRepository) GetByID(ctx context.Context, id string) (*domain.Case, error) {
	c, err := scanCase(r.pool.QueryRow(ctx, caseSelect+` WHERE c.id = $1`, id))
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *caseRepository) List(ctx context.Context, filter CaseFilter) ([]domain.Case, error) {
	where, args := buildCaseWhere(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = domain.DefaultPageLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY c.created_at DESC, c.id DESC LIMIT %d OFFSET %d`,
		caseSelect, where, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

func (r *caseRepository) Count(ctx context.Context, filter CaseFilter) (int, error) {
	where, args := buildCaseWhere(filter)
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM cases c WHERE `+where, args...).Scan(&total)
	return total, err
}

func (r *caseRepository) CountByStatus(ctx context.Context, assigneeID *string) (map[int]int, error) {
	query := `SELECT status_id, COUNT(*) FROM cases`
	args := []any{}
	if assigneeID != nil {
		args = append(args, *assigneeID)
		query += ` WHERE assigned_to = $1`
	}
	query += ` GROUP BY status_id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var statusID, count int
		if err := rows.Scan(&statusID, &count); err != nil {
			return nil, err
		}
		counts[statusID] = count
	}
	return counts, rows.Err()
}

func (r *caseRepository) CountCreatedBy(ctx context.Context, userID string) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM cases WHERE created_by = $1`, userID).Scan(&total)
	return total, err
}

func (r *caseRepository) Assign(ctx context.Context, id, assigneeID, assignedBy string) error {
	const query = `
        UPDATE cases SET assigned_to=$1, assigned_by=$2, updated_at=NOW()
        WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, assigneeID, assignedBy, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *caseRepository) UpdateStatus(ctx context.Context, id string, statusID int, expectedAssignee string) error {
	const query = `
        UPDATE cases SET status_id=$1, updated_at=NOW()
        WHERE id=$2 AND assigned_to=$3`
	cmd, err := r.pool.Exec(ctx, query, statusID, id, expectedAssignee)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAssigneeChanged
	}
	return nil
}

func buildCaseWhere(filter CaseFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("c.assigned_to=$%d", len(args)))
	}
	if filter.StatusID != nil {
		args = append(args, *filter.StatusID)
		clauses = append(clauses, fmt.Sprintf("c.status_id=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + escapeLike(strings.ToLower(strings.TrimSpace(*filter.SearchTerm))) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(`(LOWER(c.title) LIKE %s ESCAPE '\' OR LOWER(c.description) LIKE %s ESCAPE '\')`, placeholder, placeholder))
	}
	return strings.Join(clauses, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCase(row rowScanner) (*domain.Case, error) {
	var (
		c                        domain.Case
		statusName               string
		creatorName, creatorRole string
		assigneeName, assigneeRl *string
		assignerName, assignerRl *string
	)
	if err := row.Scan(
		&c.ID,
		&c.Title,
		&c.Description,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.CreatedBy,
		&c.AssignedTo,
		&c.AssignedBy,
		&c.StatusID,
		&statusName,
		&creatorName, &creatorRole,
		&assigneeName, &assigneeRl,
		&assignerName, &assignerRl,
	); err != nil {
		return nil, err
	}

	c.Status = domain.CaseStatus{ID: c.StatusID, Name: domain.CaseStatusName(statusName)}
	c.Creator = &domain.User{ID: c.CreatedBy, Name: creatorName, Role: domain.Role(creatorRole)}
	if c.AssignedTo != nil && assigneeName != nil {
		c.AssignedUser = &domain.User{ID: *c.AssignedTo, Name: *assigneeName, Role: roleOrEmpty(assigneeRl)}
	}
	if c.AssignedBy != nil && assignerName != nil {
		c.Assigner = &domain.User{ID: *c.AssignedBy, Name: *assignerName, Role: roleOrEmpty(assignerRl)}
	}
	return &c, nil
}

func roleOrEmpty(role *string) domain.Role {
	if role == nil {
		return ""
	}
	return domain.Role(*role)
}
