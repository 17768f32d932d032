package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/repositories"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/apperrors"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/docstore"
)

type fakeUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{nextID: 1, byID: map[int64]*models.User{}}
}

func (f *fakeUsers) CreateUser(ctx context.Context, user *models.User) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := *user
	u.ID = f.nextID
	f.nextID++
	f.byID[u.ID] = &u
	return u.ID, nil
}

func (f *fakeUsers) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *fakeUsers) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := f.GetUserByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeUsers) StudentIDExists(ctx context.Context, studentID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) update(id int64, fn func(u *models.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	fn(u)
	return nil
}

func (f *fakeUsers) UpdateLastLogin(ctx context.Context, userID int64) error {
	return f.update(userID, func(u *models.User) {
		now := time.Now()
		u.LastLoginAt = &now
	})
}

func (f *fakeUsers) UpdatePassword(ctx context.Context, userID int64, hashedPassword string) error {
	return f.update(userID, func(u *models.User) { u.Password = hashedPassword })
}

func (f *fakeUsers) UpdateName(ctx context.Context, userID int64, firstName, lastName string) error {
	return f.update(userID, func(u *models.User) {
		u.FirstName = firstName
		u.LastName = lastName
	})
}

type refreshToken struct {
	userID  int64
	expiry  time.Time
	revoked bool
}

type fakeTokens struct {
	mu     sync.Mutex
	tokens map[string]*refreshToken
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{tokens: map[string]*refreshToken{}}
}

func (f *fakeTokens) CreateToken(ctx context.Context, token string, userID int64, expiryDate time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = &refreshToken{userID: userID, expiry: expiryDate}
	return nil
}

func (f *fakeTokens) GetTokenByValue(ctx context.Context, token string) (int64, time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	switch {
	case !ok:
		return 0, time.Time{}, apperrors.ErrTokenNotFound
	case t.revoked:
		return 0, time.Time{}, apperrors.ErrTokenRevoked
	case t.expiry.Before(time.Now()):
		return 0, time.Time{}, apperrors.ErrTokenExpired
	}
	return t.userID, t.expiry, nil
}

func (f *fakeTokens) RevokeToken(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	t.revoked = true
	return nil
}

func (f *fakeTokens) RevokeAllUserTokens(ctx context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.userID == userID {
			t.revoked = true
		}
	}
	return nil
}

func (f *fakeTokens) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	return 0, nil
}

type resetToken struct {
	userID int64
	expiry time.Time
	used   bool
}

type fakeResetTokens struct {
	mu     sync.Mutex
	tokens map[string]*resetToken
}

func newFakeResetTokens() *fakeResetTokens {
	return &fakeResetTokens{tokens: map[string]*resetToken{}}
}

func (f *fakeResetTokens) CreateToken(ctx context.Context, userID int64, token string, expiryDate time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = &resetToken{userID: userID, expiry: expiryDate}
	return nil
}

func (f *fakeResetTokens) GetTokenInfo(ctx context.Context, token string) (int64, time.Time, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	if !ok {
		return 0, time.Time{}, false, apperrors.ErrTokenNotFound
	}
	return t.userID, t.expiry, t.used, nil
}

func (f *fakeResetTokens) MarkTokenAsUsed(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.tokens[token]; ok {
		t.used = true
		return nil
	}
	return apperrors.ErrTokenNotFound
}

func (f *fakeResetTokens) DeleteTokensByUserID(ctx context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, t := range f.tokens {
		if t.userID == userID {
			delete(f.tokens, k)
		}
	}
	return nil
}

func (f *fakeResetTokens) DeleteExpiredTokens(ctx context.Context) (int64, error) {
	return 0, nil
}

type sentMail struct {
	to    string
	token string
}

type fakeMailer struct {
	mu      sync.Mutex
	welcome []string
	resets  []sentMail
}

func (f *fakeMailer) SendPasswordResetEmail(toEmail, toName, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets = append(f.resets, sentMail{to: toEmail, token: token})
	return nil
}

func (f *fakeMailer) SendWelcomeEmail(toEmail, toName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.welcome = append(f.welcome, toEmail)
	return nil
}

type fakeRevoker struct {
	jtis map[string]time.Duration
}

func (f *fakeRevoker) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if f.jtis == nil {
		f.jtis = map[string]time.Duration{}
	}
	f.jtis[jti] = ttl
	return nil
}

type fakeSessions struct {
	ended []int64
}

func (f *fakeSessions) End(userID int64) {
	f.ended = append(f.ended, userID)
}

// portalFixture is a student enrolled in CS with results in semesters 1 and 2
type portalFixture struct {
	store *docstore.MemoryStore
	repos *repositories.Repositories
}

const fixtureUserID int64 = 7

func newPortalFixture(t *testing.T) *portalFixture {
	t.Helper()
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	repos := repositories.NewRepositories(nil, store)
	must := func(err error) { require.NoError(t, err) }

	must(repos.CourseRepository.SaveCourse(ctx, &models.Course{
		ID:   "CS",
		Name: "Computer Science",
		Semesters: []models.Semester{
			{ID: "cs-1", Name: "Semester 1", SemesterNumber: 1, Subjects: []models.SubjectRef{
				{Code: "CS101", Name: "Programming"},
				{Code: "CS102", Name: "Discrete Maths"},
			}},
			{ID: "cs-2", Name: "Semester 2", SemesterNumber: 2},
			{ID: "cs-3", Name: "Semester 3", SemesterNumber: 3},
		},
	}))
	must(repos.CourseRepository.SaveCourse(ctx, &models.Course{
		ID:        "SE",
		Name:      "Software Engineering",
		Semesters: []models.Semester{{ID: "se-1", SemesterNumber: 1}},
	}))

	must(repos.StudentRepository.CreateProfile(ctx, fixtureUserID, &models.StudentProfile{
		Name:      "Aina Rahman",
		StudentID: "TP061234",
		Courses: []models.CourseEnrollment{{
			CourseID: "CS",
			Semesters: []models.SemesterEnrollment{{
				ID:       "cs-1",
				Subjects: []models.SubjectEnrollment{{Code: "CS101", Status: "passed"}},
			}},
		}},
	}))

	must(repos.ResultRepository.SaveResultSheet(ctx, fixtureUserID, &models.ResultSheet{
		ExamResults: []models.SemesterResult{
			{CourseID: "CS", SemesterNumber: 1, Subjects: []models.SubjectRecord{
				{Code: "CS101", Title: "Programming", CreditHours: 3, Marks: 85, Grade: "A"},
				{Code: "CS102", Title: "Discrete Maths", CreditHours: 4, Marks: 65, Grade: "B"},
			}},
			{CourseID: "CS", SemesterNumber: 2, Subjects: []models.SubjectRecord{
				{Code: "CS201", Title: "Data Structures", CreditHours: 3, Marks: 55, Grade: "C"},
			}},
		},
	}))

	return &portalFixture{store: store, repos: repos}
}
