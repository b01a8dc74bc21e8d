package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/db"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/logger"
)

// routineLockKey serializes routine saves so teacher conflict checks see committed state.
const routineLockKey int64 = 5007001

// RoutineRepository persists class routine cells
type RoutineRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewRoutineRepository creates a new RoutineRepository
func NewRoutineRepository(db *pgxpool.Pool) *RoutineRepository {
	return &RoutineRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ListByClass returns the stored cells of a class routine.
func (r *RoutineRepository) ListByClass(ctx context.Context, classID string) ([]models.RoutineSlot, error) {
	sql, args, err := r.sb.Select("class_id", "day_index", "time_slot", "subject_id", "teacher_id", "class_type").
		From("class_routine_slots").
		Where(squirrel.Eq{"class_id": classID}).
		OrderBy("day_index ASC", "time_slot ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list routine query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("classId", classID).Msg("Error querying routine")
		return nil, fmt.Errorf("error querying routine: %w", err)
	}
	slots, err := pgx.CollectRows(rows, scanRoutineSlot)
	if err != nil {
		return nil, fmt.Errorf("error scanning routine rows: %w", err)
	}
	return slots, nil
}

func scanRoutineSlot(row pgx.CollectableRow) (models.RoutineSlot, error) {
	var s models.RoutineSlot
	var classType string
	err := row.Scan(&s.ClassID, &s.DayIndex, &s.TimeSlot, &s.SubjectID, &s.TeacherID, &classType)
	s.ClassType = models.ClassType(classType)
	return s, err
}

// Replace swaps the whole routine of a class in one transaction. A teacher already booked
// by another class at the same day and slot aborts the save with ErrTeacherDoubleBooked.
func (r *RoutineRepository) Replace(ctx context.Context, classID string, slots []models.RoutineSlot) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", routineLockKey); err != nil {
			return fmt.Errorf("failed to lock routines: %w", err)
		}

		conflicts, err := r.teacherBookings(ctx, tx, classID, slots)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return apperrors.NewCustomError(apperrors.ErrTeacherDoubleBooked, "teacher already assigned elsewhere in the same slot").
				WithDetails(map[string]interface{}{"conflicts": conflicts})
		}

		delSQL, delArgs, err := r.sb.Delete("class_routine_slots").Where(squirrel.Eq{"class_id": classID}).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build delete routine query: %w", err)
		}
		if _, err := tx.Exec(ctx, delSQL, delArgs...); err != nil {
			return fmt.Errorf("error clearing routine: %w", err)
		}

		if len(slots) == 0 {
			return nil
		}

		ins := r.sb.Insert("class_routine_slots").
			Columns("class_id", "day_index", "time_slot", "subject_id", "teacher_id", "class_type")
		for _, s := range slots {
			ins = ins.Values(classID, s.DayIndex, s.TimeSlot, s.SubjectID, s.TeacherID, string(s.ClassType))
		}
		insSQL, insArgs, err := ins.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert routine query: %w", err)
		}
		if _, err := tx.Exec(ctx, insSQL, insArgs...); err != nil {
			logger.Error().Err(err).Str("classId", classID).Msg("Error inserting routine cells")
			return fmt.Errorf("error inserting routine: %w", err)
		}
		return nil
	})
}

// teacherBookings finds cells of other classes that book a teacher used in slots.
func (r *RoutineRepository) teacherBookings(ctx context.Context, tx pgx.Tx, classID string, slots []models.RoutineSlot) ([]models.TeacherBooking, error) {
	type key struct {
		teacher string
		day     int
		slot    string
	}
	wanted := map[key]bool{}
	var teacherIDs []string
	seen := map[string]bool{}
	for _, s := range slots {
		if s.TeacherID == nil {
			continue
		}
		wanted[key{*s.TeacherID, s.DayIndex, s.TimeSlot}] = true
		if !seen[*s.TeacherID] {
			seen[*s.TeacherID] = true
			teacherIDs = append(teacherIDs, *s.TeacherID)
		}
	}
	if len(teacherIDs) == 0 {
		return nil, nil
	}

	sql, args, err := r.sb.Select("teacher_id", "class_id", "day_index", "time_slot").
		From("class_routine_slots").
		Where(squirrel.NotEq{"class_id": classID}).
		Where(squirrel.Eq{"teacher_id": teacherIDs}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build teacher bookings query: %w", err)
	}

	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying teacher bookings: %w", err)
	}
	booked, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.TeacherBooking, error) {
		var b models.TeacherBooking
		err := row.Scan(&b.TeacherID, &b.ClassID, &b.DayIndex, &b.TimeSlot)
		return b, err
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning teacher bookings: %w", err)
	}

	var conflicts []models.TeacherBooking
	for _, b := range booked {
		if wanted[key{b.TeacherID, b.DayIndex, b.TimeSlot}] {
			conflicts = append(conflicts, b)
		}
	}
	return conflicts, nil
}
