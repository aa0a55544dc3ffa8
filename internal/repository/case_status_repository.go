package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/case-service/internal/domain"
)

// CaseStatusRepository reads the seeded status catalog.
type CaseStatusRepository interface {
	List(ctx context.Context) ([]domain.CaseStatus, error)
	// Ensure inserts missing statuses in the given order, leaving existing rows untouched.
	Ensure(ctx context.Context, names []domain.CaseStatusName) error
}

type caseStatusRepository struct {
	pool *pgxpool.Pool
}

// NewCaseStatusRepository creates repository.
func NewCaseStatusRepository(pool *pgxpool.Pool) CaseStatusRepository {
	return &caseStatusRepository{pool: pool}
}

func (r *caseStatusRepository) List(ctx context.Context) ([]domain.CaseStatus, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM case_statuses ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CaseStatus
	for rows.Next() {
		var status domain.CaseStatus
		if err := rows.Scan(&status.ID, &status.Name); err != nil {
			return nil, err
		}
		result = append(result, status)
	}
	return result, rows.Err()
}

func (r *caseStatusRepository) Ensure(ctx context.Context, names []domain.CaseStatusName) error {
	const query = `INSERT INTO case_statuses (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`
	for _, name := range names {
		if _, err := r.pool.Exec(ctx, query, name); err != nil {
			return err
		}
	}
	return nil
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
