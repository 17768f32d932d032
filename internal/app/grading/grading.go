// Package grading turns letter grades into credit-weighted GPA and CGPA
// figures. Every function here is pure.
package grading

import (
	"github.com/shopspring/decimal"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/apperrors"
)

// ErrDivisionUndefined is returned when there are no credit hours to average over.
var ErrDivisionUndefined = apperrors.ErrDivisionUndefined

var gradePoints = map[string]int{
	"A": 4,
	"B": 3,
	"C": 2,
	"D": 1,
	"F": 0,
}

// GradePoints maps a letter grade to points. Matching is exact; any grade
// outside A-F (including "a", " A" and "") scores 0 rather than failing.
func GradePoints(grade string) int {
	return gradePoints[grade]
}

// CalculateGPA averages grade points weighted by credit hours and rounds
// half-up to two decimals. Subjects with non-positive credit hours are
// ignored; if none remain the result is ErrDivisionUndefined.
func CalculateGPA(subjects []models.SubjectRecord) (models.GPAResult, error) {
	credits, points := totals(subjects)
	if !credits.IsPositive() {
		return models.GPAResult{}, ErrDivisionUndefined
	}

	return models.GPAResult{
		SemesterCredits: credits.InexactFloat64(),
		GPA:             average(points, credits),
	}, nil
}

// CalculateCGPA flattens every subject of every semester and averages the
// union, so CalculateCGPA(s) equals CalculateGPA(flatten(s)).
func CalculateCGPA(semesters []models.SemesterResult) (models.CGPAResult, error) {
	credits, points := totals(Flatten(semesters))
	if !credits.IsPositive() {
		return models.CGPAResult{}, ErrDivisionUndefined
	}

	return models.CGPAResult{
		TotalCreditHoursEarned: credits.InexactFloat64(),
		CGPA:                   average(points, credits),
	}, nil
}

// Flatten concatenates the subjects of all semesters in order.
func Flatten(semesters []models.SemesterResult) []models.SubjectRecord {
	n := 0
	for _, s := range semesters {
		n += len(s.Subjects)
	}
	out := make([]models.SubjectRecord, 0, n)
	for _, s := range semesters {
		out = append(out, s.Subjects...)
	}
	return out
}

// totals skips subjects with non-positive credit hours; they carry no weight
// and would otherwise cancel out real credits.
func totals(subjects []models.SubjectRecord) (credits, points decimal.Decimal) {
	credits, points = decimal.Zero, decimal.Zero
	for _, s := range subjects {
		if s.CreditHours <= 0 {
			continue
		}
		ch := decimal.NewFromFloat(s.CreditHours)
		credits = credits.Add(ch)
		points = points.Add(ch.Mul(decimal.NewFromInt(int64(GradePoints(s.Grade)))))
	}
	return credits, points
}

// average rounds half away from zero, which is half-up for the non-negative
// averages a grade scale can produce.
func average(points, credits decimal.Decimal) float64 {
	return points.Div(credits).Round(2).InexactFloat64()
}
