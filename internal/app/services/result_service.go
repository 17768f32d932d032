package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/grading"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models/dto"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/repositories"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/apperrors"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/metrics"
)

const transcriptSheet = "Transcript"

// ResultService serves exam results and grade averages
type ResultService interface {
	GetResults(ctx context.Context, userID int64, courseID string, semester int) (*dto.ResultsResponse, error)
	GetCGPA(ctx context.Context, userID int64, courseID string) (*dto.CGPAResponse, error)
	// ExportTranscript renders every recorded semester as an .xlsx workbook
	ExportTranscript(ctx context.Context, userID int64) (*bytes.Buffer, string, error)
	CalculateGPA(subjects []models.SubjectRecord) (models.GPAResult, error)
	CalculateCGPA(semesters []models.SemesterResult) (models.CGPAResult, error)
}

type resultServiceImpl struct {
	students repositories.IStudentRepository
	courses  repositories.ICourseRepository
	results  repositories.IResultRepository
	logger   zerolog.Logger
}

// NewResultService creates a new ResultService
func NewResultService(
	students repositories.IStudentRepository,
	courses repositories.ICourseRepository,
	results repositories.IResultRepository,
	logger zerolog.Logger,
) ResultService {
	return &resultServiceImpl{
		students: students,
		courses:  courses,
		results:  results,
		logger:   logger,
	}
}

// GetResults returns a semester's subjects with GPA and CGPA. A semester
// without records sets NoResultsFound and carries no averages.
func (s *resultServiceImpl) GetResults(ctx context.Context, userID int64, courseID string, semester int) (*dto.ResultsResponse, error) {
	if _, _, err := resolveCourseSemester(ctx, s.students, s.courses, userID, courseID, semester); err != nil {
		return nil, err
	}

	sheet, err := s.results.GetResultSheet(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &dto.ResultsResponse{CourseID: courseID, Semester: semester, Subjects: []models.SubjectRecord{}}
	subjects, _ := sheet.Semester(courseID, semester)
	if len(subjects) == 0 {
		resp.NoResultsFound = true
		return resp, nil
	}
	resp.Subjects = subjects

	gpa, err := s.CalculateGPA(subjects)
	switch {
	case err == nil:
		resp.GPA = &gpa
	case errors.Is(err, apperrors.ErrDivisionUndefined):
		resp.GPAUndefined = true
	default:
		return nil, err
	}

	cgpa, err := s.CalculateCGPA(sheet.ForCourse(courseID))
	switch {
	case err == nil:
		resp.CGPA = &cgpa
	case errors.Is(err, apperrors.ErrDivisionUndefined):
		resp.CGPAUndefined = true
	default:
		return nil, err
	}

	return resp, nil
}

// GetCGPA averages every recorded semester, limited to courseID when given
func (s *resultServiceImpl) GetCGPA(ctx context.Context, userID int64, courseID string) (*dto.CGPAResponse, error) {
	if courseID != "" {
		if _, err := requireEnrollment(ctx, s.students, userID, courseID); err != nil {
			return nil, err
		}
	} else if userID <= 0 {
		return nil, apperrors.ErrAuthRequired
	}

	sheet, err := s.results.GetResultSheet(ctx, userID)
	if err != nil {
		return nil, err
	}

	semesters := sheet.ForCourse(courseID)
	resp := &dto.CGPAResponse{CourseID: courseID, Semesters: len(semesters)}

	cgpa, err := s.CalculateCGPA(semesters)
	switch {
	case err == nil:
		resp.CGPAResult = cgpa
	case errors.Is(err, apperrors.ErrDivisionUndefined):
		resp.CGPAUndefined = true
	default:
		return nil, err
	}
	return resp, nil
}

func (s *resultServiceImpl) CalculateGPA(subjects []models.SubjectRecord) (models.GPAResult, error) {
	result, err := grading.CalculateGPA(subjects)
	metrics.ObserveGrade("gpa", err)
	return result, err
}

func (s *resultServiceImpl) CalculateCGPA(semesters []models.SemesterResult) (models.CGPAResult, error) {
	result, err := grading.CalculateCGPA(semesters)
	metrics.ObserveGrade("cgpa", err)
	return result, err
}

// ExportTranscript lists semesters by course then number, each followed by
// its GPA, and ends with the CGPA over everything.
func (s *resultServiceImpl) ExportTranscript(ctx context.Context, userID int64) (*bytes.Buffer, string, error) {
	if userID <= 0 {
		return nil, "", apperrors.ErrAuthRequired
	}
	profile, err := s.students.GetProfile(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	sheet, err := s.results.GetResultSheet(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	semesters := append([]models.SemesterResult(nil), sheet.ExamResults...)
	sort.SliceStable(semesters, func(i, j int) bool {
		if semesters[i].CourseID != semesters[j].CourseID {
			return semesters[i].CourseID < semesters[j].CourseID
		}
		return semesters[i].SemesterNumber < semesters[j].SemesterNumber
	})

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(transcriptSheet)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create transcript sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(transcriptSheet, "A", "B", 10)
	f.SetColWidth(transcriptSheet, "C", "C", 12)
	f.SetColWidth(transcriptSheet, "D", "D", 36)
	f.SetColWidth(transcriptSheet, "E", "H", 12)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	boldStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})

	f.SetCellValue(transcriptSheet, "A1", fmt.Sprintf("%s (%s) - Academic Transcript", profile.Name, profile.StudentID))
	f.MergeCell(transcriptSheet, "A1", "H1")
	f.SetCellStyle(transcriptSheet, "A1", "A1", headerStyle)

	headers := []string{"Course", "Semester", "Code", "Subject", "Credit Hours", "Marks", "Grade", "Points"}
	for i, h := range headers {
		f.SetCellValue(transcriptSheet, cell(colName(i), 2), h)
	}
	f.SetCellStyle(transcriptSheet, "A2", "H2", boldStyle)

	row := 3
	for _, sem := range semesters {
		for _, subj := range sem.Subjects {
			values := []interface{}{
				sem.CourseID, sem.SemesterNumber, subj.Code, subj.Title,
				subj.CreditHours, subj.Marks, subj.Grade, grading.GradePoints(subj.Grade),
			}
			for i, v := range values {
				f.SetCellValue(transcriptSheet, cell(colName(i), row), v)
			}
			row++
		}

		gpaText := "undefined"
		if gpa, err := s.CalculateGPA(sem.Subjects); err == nil {
			gpaText = fmt.Sprintf("%.2f", gpa.GPA)
		}
		f.SetCellValue(transcriptSheet, cell("D", row), fmt.Sprintf("Semester %d GPA", sem.SemesterNumber))
		f.SetCellValue(transcriptSheet, cell("H", row), gpaText)
		f.SetCellStyle(transcriptSheet, cell("A", row), cell("H", row), boldStyle)
		row++
	}

	cgpaText := "undefined"
	if cgpa, err := s.CalculateCGPA(semesters); err == nil {
		cgpaText = fmt.Sprintf("%.2f", cgpa.CGPA)
	}
	f.SetCellValue(transcriptSheet, cell("D", row), "CGPA")
	f.SetCellValue(transcriptSheet, cell("H", row), cgpaText)
	f.SetCellStyle(transcriptSheet, cell("A", row), cell("H", row), boldStyle)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to write transcript workbook")
		return nil, "", fmt.Errorf("failed to write transcript: %w", err)
	}

	filename := fmt.Sprintf("transcript_%s.xlsx", profile.StudentID)
	return buf, filename, nil
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
