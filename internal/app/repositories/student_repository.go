package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/domain/rollnumber"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/dberrors"
	"github.com/yigit/schooldesk/internal/pkg/logger"
)

// constraint backing one roll number per section
const studentsSectionRollKey = "students_section_roll_key"

var studentColumns = []string{
	"id", "first_name", "last_name", "date_of_birth", "guardian_phone",
	"class_id", "section_id", "roll_number", "created_at", "updated_at",
}

// StudentRepository handles student database operations
type StudentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	s := &models.Student{}
	err := row.Scan(&s.ID, &s.FirstName, &s.LastName, &s.DateOfBirth, &s.GuardianPhone,
		&s.ClassID, &s.SectionID, &s.RollNumber, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// GetByID retrieves a student by ID
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns...).
		From("students").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	s, err := scanStudent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Str("studentId", id).Msg("Error scanning student row")
		return nil, fmt.Errorf("error getting student by ID: %w", err)
	}
	return s, nil
}

// StudentAssignment reads the persisted placement of a student.
func (r *StudentRepository) StudentAssignment(ctx context.Context, id string) (rollnumber.Assignment, error) {
	s, err := r.GetByID(ctx, id)
	if err != nil {
		return rollnumber.Assignment{}, err
	}
	return s.Assignment(), nil
}

// Create inserts a student and returns its ID.
func (r *StudentRepository) Create(ctx context.Context, s *models.Student) (string, error) {
	sql, args, err := r.sb.Insert("students").
		Columns("first_name", "last_name", "date_of_birth", "guardian_phone", "class_id", "section_id", "roll_number").
		Values(s.FirstName, s.LastName, s.DateOfBirth, s.GuardianPhone, s.ClassID, s.SectionID, s.RollNumber).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return "", fmt.Errorf("failed to build create student query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, studentsSectionRollKey) {
			return "", apperrors.ErrRollNumberTaken
		}
		logger.Error().Err(err).Msg("Error executing create student query")
		return "", fmt.Errorf("error creating student: %w", err)
	}
	return s.ID, nil
}

// UpdatePlacement moves a student to a class and section with the given roll number.
func (r *StudentRepository) UpdatePlacement(ctx context.Context, id string, a rollnumber.Assignment) error {
	sql, args, err := r.sb.Update("students").
		SetMap(map[string]interface{}{
			"class_id":    a.ClassID,
			"section_id":  a.SectionID,
			"roll_number": a.RollNumber,
			"updated_at":  time.Now().UTC(),
		}).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update placement query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, studentsSectionRollKey) {
			return apperrors.ErrRollNumberTaken
		}
		logger.Error().Err(err).Str("studentId", id).Msg("Error executing update placement query")
		return fmt.Errorf("error updating student placement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// RollNumbersInSection lists the roll numbers already held in a section.
func (r *StudentRepository) RollNumbersInSection(ctx context.Context, sectionID string) ([]string, error) {
	sql, args, err := r.sb.Select("roll_number").
		From("students").
		Where(squirrel.Eq{"section_id": sectionID}).
		Where(squirrel.NotEq{"roll_number": nil}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build roll numbers query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("sectionId", sectionID).Msg("Error querying roll numbers")
		return nil, fmt.Errorf("error querying roll numbers: %w", err)
	}
	rolls, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("error collecting roll numbers: %w", err)
	}
	return rolls, nil
}
