package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/docstore"
)

// Repositories holds all the repository instances. Account and token rows
// live in Postgres tables; student records live in the document store.
type Repositories struct {
	UserRepository               *UserRepository
	TokenRepository              *TokenRepository
	PasswordResetTokenRepository *PasswordResetTokenRepository

	StudentRepository    *StudentRepository
	CourseRepository     *CourseRepository
	ResultRepository     *ResultRepository
	AttendanceRepository *AttendanceRepository
	ExamRepository       *ScheduleRepository
	TimetableRepository  *ScheduleRepository
	FeedbackRepository   *FeedbackRepository
	NewsRepository       *MediaRepository
	PerksRepository      *MediaRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool, store docstore.Store) *Repositories {
	return &Repositories{
		UserRepository:               NewUserRepository(db),
		TokenRepository:              NewTokenRepository(db),
		PasswordResetTokenRepository: NewPasswordResetTokenRepository(db),

		StudentRepository:    NewStudentRepository(store),
		CourseRepository:     NewCourseRepository(store),
		ResultRepository:     NewResultRepository(store),
		AttendanceRepository: NewAttendanceRepository(store),
		ExamRepository:       NewExamRepository(store),
		TimetableRepository:  NewTimetableRepository(store),
		FeedbackRepository:   NewFeedbackRepository(store),
		NewsRepository:       NewNewsRepository(store),
		PerksRepository:      NewPerksRepository(store),
	}
}
