package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/pkg/logger"
)

// TeacherRepository handles teacher lookups
type TeacherRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewTeacherRepository creates a new TeacherRepository
func NewTeacherRepository(db *pgxpool.Pool) *TeacherRepository {
	return &TeacherRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ListByBranch returns the teachers available in a branch.
func (r *TeacherRepository) ListByBranch(ctx context.Context, branchID string) ([]models.Teacher, error) {
	sql, args, err := r.sb.Select("id", "branch_id", "name", "email").
		From("teachers").
		Where(squirrel.Eq{"branch_id": branchID}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list teachers query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("branchId", branchID).Msg("Error querying teachers")
		return nil, fmt.Errorf("error querying teachers: %w", err)
	}
	teachers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Teacher, error) {
		var t models.Teacher
		err := row.Scan(&t.ID, &t.BranchID, &t.Name, &t.Email)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning teacher rows: %w", err)
	}
	return teachers, nil
}
