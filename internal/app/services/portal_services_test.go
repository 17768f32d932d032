package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models/dto"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/selection"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/apperrors"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/filestorage"
)

func strPtr(s string) *string { return &s }

func newProfileFixture(t *testing.T) (*portalFixture, *fakeUsers, *filestorage.LocalStorage, ProfileService) {
	f := newPortalFixture(t)
	users := newFakeUsers()
	users.nextID = fixtureUserID
	_, err := users.CreateUser(context.Background(), &models.User{
		Email: "aina@campus.edu.my", FirstName: "Aina", LastName: "Rahman", StudentID: "TP061234", IsActive: true,
	})
	require.NoError(t, err)

	storage, err := filestorage.NewLocalStorage(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)
	return f, users, storage, NewProfileService(users, f.repos.StudentRepository, storage, zerolog.Nop())
}

func TestProfileService_GetAndUpdate(t *testing.T) {
	_, users, _, svc := newProfileFixture(t)
	ctx := context.Background()

	profile, err := svc.GetProfile(ctx, fixtureUserID)
	require.NoError(t, err)
	assert.Equal(t, "aina@campus.edu.my", profile.Email)
	assert.Equal(t, []string{"CS"}, profile.CourseIDs)

	updated, err := svc.UpdateProfile(ctx, fixtureUserID, &dto.UpdateProfileRequest{
		Name:   strPtr("  Aina Binti Rahman "),
		Gender: strPtr("F"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Aina Binti Rahman", updated.Name)
	assert.Equal(t, "F", updated.Gender)
	assert.Equal(t, "TP061234", updated.StudentID)

	user, err := users.GetUserByID(ctx, fixtureUserID)
	require.NoError(t, err)
	assert.Equal(t, "Aina Binti", user.FirstName)
	assert.Equal(t, "Rahman", user.LastName)

	_, err = svc.UpdateProfile(ctx, fixtureUserID, &dto.UpdateProfileRequest{Name: strPtr("   ")})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.GetProfile(ctx, 0)
	assert.ErrorIs(t, err, apperrors.ErrAuthRequired)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProfileService_UploadAvatar(t *testing.T) {
	f, _, storage, svc := newProfileFixture(t)
	ctx := context.Background()

	first, err := svc.UploadAvatar(ctx, fixtureUserID, bytes.NewReader(pngBytes(t, 640, 480)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.AvatarURL, "http://localhost:8080/uploads/avatars/7/"), first.AvatarURL)
	assert.True(t, strings.HasSuffix(first.AvatarURL, ".png"))

	stored, err := os.Open(storage.GetFullPath(first.AvatarURL))
	require.NoError(t, err)
	cfg, _, err := image.DecodeConfig(stored)
	stored.Close()
	require.NoError(t, err)
	assert.Equal(t, filestorage.AvatarSize, cfg.Width)
	assert.Equal(t, filestorage.AvatarSize, cfg.Height)

	second, err := svc.UploadAvatar(ctx, fixtureUserID, bytes.NewReader(pngBytes(t, 50, 80)))
	require.NoError(t, err)
	_, err = os.Stat(storage.GetFullPath(first.AvatarURL))
	assert.True(t, os.IsNotExist(err), "previous avatar should be removed")

	profile, err := f.repos.StudentRepository.GetProfile(ctx, fixtureUserID)
	require.NoError(t, err)
	assert.Equal(t, second.AvatarURL, profile.AvatarURL)

	_, err = svc.UploadAvatar(ctx, fixtureUserID, strings.NewReader("not an image"))
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedImage)
}

func TestFeedbackID(t *testing.T) {
	assert.Equal(t, "aina-rahman", FeedbackID("  Aina \t Rahman "))
	assert.Equal(t, "lee", FeedbackID("LEE"))
	assert.Equal(t, "", FeedbackID("   "))
}

func TestFeedbackService_Submit(t *testing.T) {
	f := newPortalFixture(t)
	svc := NewFeedbackService(f.repos.FeedbackRepository, zerolog.Nop())
	svc.(*feedbackServiceImpl).now = func() time.Time { return time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC) }
	ctx := context.Background()

	resp, err := svc.SubmitFeedback(ctx, &dto.FeedbackRequest{
		Name: "Aina Rahman", Email: "aina@campus.edu.my", Title: "Library", Message: "Open longer please",
	})
	require.NoError(t, err)
	assert.Equal(t, "aina-rahman", resp.ID)
	assert.Equal(t, "2024-05-01T08:30:00Z", resp.Timestamp)

	doc, err := f.store.GetDocument(ctx, models.CollectionFeedbacks, "aina-rahman")
	require.NoError(t, err)
	var stored models.Feedback
	require.NoError(t, doc.Decode(&stored))
	assert.Equal(t, "Open longer please", stored.Message)

	_, err = svc.SubmitFeedback(ctx, &dto.FeedbackRequest{Name: " ", Email: "x@y.z", Title: "t", Message: "m"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestGalleryService_Pages(t *testing.T) {
	f := newPortalFixture(t)
	ctx := context.Background()
	for _, id := range []string{"n1", "n2", "n3"} {
		require.NoError(t, f.repos.NewsRepository.SaveItem(ctx, &models.MediaItem{ID: id, URL: "https://cdn.campus.edu.my/" + id + ".jpg"}))
	}

	svc := NewGalleryService(f.repos.NewsRepository, f.repos.PerksRepository, zerolog.Nop())
	page, err := svc.ListNews(ctx, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(3), page.Pagination.TotalItems)
	assert.Equal(t, 2, page.Pagination.TotalPages)

	beyond, err := svc.ListNews(ctx, 5, 2)
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
	assert.Equal(t, 5, beyond.Pagination.CurrentPage)
	assert.Equal(t, 2, beyond.Pagination.TotalPages)

	perks, err := svc.ListPerks(ctx, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, perks.Items)
}

func newSelectionFixture(t *testing.T) (*portalFixture, SelectionService) {
	f := newPortalFixture(t)
	courses := NewCourseService(f.repos.StudentRepository, f.repos.CourseRepository, zerolog.Nop())
	attendance := NewAttendanceService(f.repos.StudentRepository, f.repos.CourseRepository, f.repos.AttendanceRepository, zerolog.Nop())
	fetcher := NewSemesterFetcher(f.repos.ResultRepository, attendance, f.repos.ExamRepository, f.repos.TimetableRepository)

	manager := selection.NewManager(courses, fetcher, nil, selection.ManagerConfig{FetchTimeout: time.Second}, zerolog.Nop())
	t.Cleanup(manager.Shutdown)
	return f, NewSelectionService(manager, zerolog.Nop())
}

func TestSelectionService_DrillDown(t *testing.T) {
	f, svc := newSelectionFixture(t)
	saveExamSlots(t, f)
	ctx := context.Background()

	snap, err := svc.Current(ctx, fixtureUserID)
	require.NoError(t, err)
	assert.Equal(t, selection.NoCourseSelected, snap.State)

	snap, err = svc.SelectCourse(ctx, fixtureUserID, "CS")
	require.NoError(t, err)
	assert.Equal(t, selection.CourseSelected, snap.State)

	snap, err = svc.SelectSemester(ctx, fixtureUserID, 1, true)
	require.NoError(t, err)
	assert.Equal(t, selection.CourseAndSemesterSelected, snap.State)
	assert.False(t, snap.Loading)
	require.NotNil(t, snap.GPA)
	assert.Equal(t, 3.43, snap.GPA.GPA)
	require.NotNil(t, snap.CGPA)
	assert.Equal(t, 3.0, snap.CGPA.CGPA)
	assert.Len(t, snap.Exams, 2)

	snap, err = svc.SelectSemester(ctx, fixtureUserID, 3, true)
	require.NoError(t, err)
	assert.True(t, snap.NoResultsFound)
	assert.Empty(t, snap.Error)

	_, err = svc.SelectSemester(ctx, fixtureUserID, 5, true)
	assert.ErrorIs(t, err, apperrors.ErrInvalidSelection)

	_, err = svc.SelectCourse(ctx, fixtureUserID, "SE")
	assert.ErrorIs(t, err, apperrors.ErrInvalidSelection)

	snap, err = svc.DeselectCourse(ctx, fixtureUserID)
	require.NoError(t, err)
	assert.Equal(t, selection.NoCourseSelected, snap.State)
	assert.Nil(t, snap.GPA)
}

func TestSelectionService_FetchFailure(t *testing.T) {
	f, svc := newSelectionFixture(t)
	ctx := context.Background()

	_, err := svc.SelectCourse(ctx, fixtureUserID, "CS")
	require.NoError(t, err)

	f.store.FailWith = errors.New("unavailable")
	snap, err := svc.SelectSemester(ctx, fixtureUserID, 1, true)
	require.NoError(t, err)
	assert.NotEmpty(t, snap.Error)
	assert.ErrorIs(t, snap.Err(), apperrors.ErrFetchFailed)
	assert.False(t, snap.NoResultsFound)
}

func TestSelectionService_Commands(t *testing.T) {
	_, svc := newSelectionFixture(t)
	ctx := context.Background()
	commands := svc.Commands()

	require.NoError(t, commands.SelectCourse(ctx, fixtureUserID, "CS"))
	require.NoError(t, commands.SelectSemester(ctx, fixtureUserID, 2))
	assert.ErrorIs(t, commands.SelectSemester(ctx, fixtureUserID, 8), apperrors.ErrInvalidSelection)

	snap, err := svc.Current(ctx, fixtureUserID)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Semester)

	svc.End(fixtureUserID)
	require.NoError(t, commands.DeselectCourse(ctx, fixtureUserID))

	_, err = svc.Current(ctx, 0)
	assert.ErrorIs(t, err, apperrors.ErrAuthRequired)
}
