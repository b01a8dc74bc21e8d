package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/logger"
)

// ClassRepository handles class and section lookups
type ClassRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewClassRepository creates a new ClassRepository
func NewClassRepository(db *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ListClasses returns the classes of an organisation, or every class when orgID is empty.
func (r *ClassRepository) ListClasses(ctx context.Context, orgID string) ([]models.Class, error) {
	q := r.sb.Select("id", "org_id", "branch_id", "name", "created_at").
		From("classes").
		OrderBy("name ASC")
	if orgID != "" {
		q = q.Where(squirrel.Eq{"org_id": orgID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list classes query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("orgId", orgID).Msg("Error querying classes")
		return nil, fmt.Errorf("error querying classes: %w", err)
	}
	defer rows.Close()

	classes := []models.Class{}
	for rows.Next() {
		var c models.Class
		if err := rows.Scan(&c.ID, &c.OrgID, &c.BranchID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning class row: %w", err)
		}
		classes = append(classes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating class rows: %w", err)
	}

	return classes, nil
}

// GetClass retrieves a class by ID
func (r *ClassRepository) GetClass(ctx context.Context, id string) (*models.Class, error) {
	sql, args, err := r.sb.Select("id", "org_id", "branch_id", "name", "created_at").
		From("classes").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get class query: %w", err)
	}

	c := &models.Class{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.OrgID, &c.BranchID, &c.Name, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrClassNotFound
		}
		logger.Error().Err(err).Str("classId", id).Msg("Error scanning class row")
		return nil, fmt.Errorf("error getting class by ID: %w", err)
	}

	return c, nil
}

// ListSections returns the sections of a class ordered by code.
func (r *ClassRepository) ListSections(ctx context.Context, classID string) ([]models.Section, error) {
	sql, args, err := r.sb.Select("id", "class_id", "name", "code").
		From("sections").
		Where(squirrel.Eq{"class_id": classID}).
		OrderBy("code ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list sections query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("classId", classID).Msg("Error querying sections")
		return nil, fmt.Errorf("error querying sections: %w", err)
	}
	defer rows.Close()

	sections := []models.Section{}
	for rows.Next() {
		var s models.Section
		if err := rows.Scan(&s.ID, &s.ClassID, &s.Name, &s.Code); err != nil {
			return nil, fmt.Errorf("error scanning section row: %w", err)
		}
		sections = append(sections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating section rows: %w", err)
	}

	return sections, nil
}

// GetSection retrieves a section by ID
func (r *ClassRepository) GetSection(ctx context.Context, id string) (*models.Section, error) {
	sql, args, err := r.sb.Select("id", "class_id", "name", "code").
		From("sections").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get section query: %w", err)
	}

	s := &models.Section{}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&s.ID, &s.ClassID, &s.Name, &s.Code); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSectionNotFound
		}
		logger.Error().Err(err).Str("sectionId", id).Msg("Error scanning section row")
		return nil, fmt.Errorf("error getting section by ID: %w", err)
	}

	return s, nil
}
