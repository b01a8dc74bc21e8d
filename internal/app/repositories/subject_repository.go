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

// SubjectRepository handles subject lookups
type SubjectRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSubjectRepository creates a new SubjectRepository
func NewSubjectRepository(db *pgxpool.Pool) *SubjectRepository {
	return &SubjectRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ListByClass returns the subjects taught to a class.
func (r *SubjectRepository) ListByClass(ctx context.Context, classID string) ([]models.Subject, error) {
	sql, args, err := r.sb.Select("id", "class_id", "name", "code").
		From("subjects").
		Where(squirrel.Eq{"class_id": classID}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list subjects query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("classId", classID).Msg("Error querying subjects")
		return nil, fmt.Errorf("error querying subjects: %w", err)
	}
	subjects, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Subject, error) {
		var s models.Subject
		err := row.Scan(&s.ID, &s.ClassID, &s.Name, &s.Code)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning subject rows: %w", err)
	}
	return subjects, nil
}
