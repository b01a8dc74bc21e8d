package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	ClassRepository    *ClassRepository
	StudentRepository  *StudentRepository
	SettingsRepository *SettingsRepository
	SubjectRepository  *SubjectRepository
	TeacherRepository  *TeacherRepository
	RoutineRepository  *RoutineRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		ClassRepository:    NewClassRepository(db),
		StudentRepository:  NewStudentRepository(db),
		SettingsRepository: NewSettingsRepository(db),
		SubjectRepository:  NewSubjectRepository(db),
		TeacherRepository:  NewTeacherRepository(db),
		RoutineRepository:  NewRoutineRepository(db),
	}
}
