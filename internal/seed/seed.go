// Package seed loads demo portal data from a YAML fixture file.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	appModels "github.com/Cookie-Knight/student-information-system-fyp/internal/app/models"
	appRepos "github.com/Cookie-Knight/student-information-system-fyp/internal/app/repositories"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/auth"
)

// Fixtures is the content of the seed file. Keys inside each record use the
// stored document names (courseId, semesterNumber, absent_students, ...).
type Fixtures struct {
	Courses    []appModels.Course                     `json:"courses"`
	Exams      []appModels.ScheduleSlot               `json:"exams"`
	Timetable  []appModels.ScheduleSlot               `json:"timetable"`
	Attendance map[string]appModels.AttendanceSession `json:"attendance"`
	News       []appModels.MediaItem                  `json:"news"`
	Perks      []appModels.MediaItem                  `json:"perks"`
	Students   []Student                              `json:"students"`
}

// Student is a demo account with its records
type Student struct {
	Email     string                   `json:"email"`
	Password  string                   `json:"password"`
	FirstName string                   `json:"firstName"`
	LastName  string                   `json:"lastName"`
	StudentID string                   `json:"studentId"`
	Profile   appModels.StudentProfile `json:"profile"`
	Results   appModels.ResultSheet    `json:"results"`
}

// Load reads a seed file. The YAML is decoded generically and re-encoded as
// JSON so the fixtures share the documents' field names.
func Load(path string) (*Fixtures, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes seed YAML
func Parse(raw []byte) (*Fixtures, error) {
	var generic interface{}
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	encoded, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("failed to convert seed file: %w", err)
	}

	fixtures := &Fixtures{}
	if err := json.Unmarshal(encoded, fixtures); err != nil {
		return nil, fmt.Errorf("failed to decode seed fixtures: %w", err)
	}
	return fixtures, nil
}

// CreateDefaultData writes the fixtures when the courses collection is
// empty. users may be nil, in which case demo accounts are skipped.
// Failures are collected and returned together; one bad record does not stop
// the rest.
func CreateDefaultData(ctx context.Context, repos *appRepos.Repositories, users appRepos.IUserRepository, fixtures *Fixtures, lgr zerolog.Logger) error {
	count, err := repos.CourseRepository.CountCourses(ctx)
	if err != nil {
		return fmt.Errorf("failed to count courses: %w", err)
	}
	if count > 0 {
		lgr.Info().Int64("courses", count).Msg("Portal data present, skipping seed")
		return nil
	}

	lgr.Info().Msg("Seeding demo portal data...")
	var finalErr error
	record := func(what string, err error) {
		if err != nil {
			lgr.Error().Err(err).Str("record", what).Msg("Error seeding record")
			finalErr = errors.Join(finalErr, err)
		}
	}

	for i := range fixtures.Courses {
		record("course "+fixtures.Courses[i].ID, repos.CourseRepository.SaveCourse(ctx, &fixtures.Courses[i]))
	}
	for i := range fixtures.Exams {
		record("exam "+fixtures.Exams[i].ID, repos.ExamRepository.SaveSlot(ctx, &fixtures.Exams[i]))
	}
	for i := range fixtures.Timetable {
		record("timetable "+fixtures.Timetable[i].ID, repos.TimetableRepository.SaveSlot(ctx, &fixtures.Timetable[i]))
	}
	for id, session := range fixtures.Attendance {
		session := session
		record("attendance "+id, repos.AttendanceRepository.SaveSession(ctx, id, &session))
	}
	for i := range fixtures.News {
		record("news "+fixtures.News[i].ID, repos.NewsRepository.SaveItem(ctx, &fixtures.News[i]))
	}
	for i := range fixtures.Perks {
		record("perk "+fixtures.Perks[i].ID, repos.PerksRepository.SaveItem(ctx, &fixtures.Perks[i]))
	}

	if users != nil {
		for i := range fixtures.Students {
			record("student "+fixtures.Students[i].Email, seedStudent(ctx, repos, users, &fixtures.Students[i], lgr))
		}
	}

	lgr.Info().
		Int("courses", len(fixtures.Courses)).
		Int("exams", len(fixtures.Exams)).
		Int("students", len(fixtures.Students)).
		Msg("Seed finished")
	return finalErr
}

func seedStudent(ctx context.Context, repos *appRepos.Repositories, users appRepos.IUserRepository, s *Student, lgr zerolog.Logger) error {
	email := strings.ToLower(strings.TrimSpace(s.Email))
	exists, err := users.EmailExists(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		lgr.Debug().Str("email", email).Msg("Demo student already exists")
		return nil
	}

	hashed, err := auth.HashPassword(s.Password)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}

	userID, err := users.CreateUser(ctx, &appModels.User{
		Email:     email,
		Password:  hashed,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		StudentID: strings.ToUpper(s.StudentID),
		RoleType:  appModels.RoleStudent,
		IsActive:  true,
	})
	if err != nil {
		return err
	}

	profile := s.Profile
	if profile.StudentID == "" {
		profile.StudentID = strings.ToUpper(s.StudentID)
	}
	if profile.Name == "" {
		profile.Name = strings.TrimSpace(s.FirstName + " " + s.LastName)
	}
	if err := repos.StudentRepository.CreateProfile(ctx, userID, &profile); err != nil {
		return err
	}
	if len(s.Results.ExamResults) > 0 {
		if err := repos.ResultRepository.SaveResultSheet(ctx, userID, &s.Results); err != nil {
			return err
		}
	}

	lgr.Info().Int64("userID", userID).Str("email", email).Msg("Demo student created")
	return nil
}
