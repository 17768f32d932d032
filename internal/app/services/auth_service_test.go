package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models/dto"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/repositories"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/apperrors"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/auth"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/docstore"
)

type authFixture struct {
	svc      AuthService
	jwt      *auth.JWTService
	users    *fakeUsers
	tokens   *fakeTokens
	resets   *fakeResetTokens
	mailer   *fakeMailer
	revoker  *fakeRevoker
	sessions *fakeSessions
	students *repositories.StudentRepository
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		jwt: auth.NewJWTService(auth.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenExp:  15 * time.Minute,
			RefreshTokenExp: 24 * time.Hour,
			TokenIssuer:     "campusphere-test",
		}),
		users:    newFakeUsers(),
		tokens:   newFakeTokens(),
		resets:   newFakeResetTokens(),
		mailer:   &fakeMailer{},
		revoker:  &fakeRevoker{},
		sessions: &fakeSessions{},
		students: repositories.NewStudentRepository(docstore.NewMemoryStore()),
	}
	f.svc = NewAuthService(AuthDependencies{
		Users:       f.users,
		Tokens:      f.tokens,
		ResetTokens: f.resets,
		Students:    f.students,
		JWT:         f.jwt,
		Email:       f.mailer,
		Revoker:     f.revoker,
		Sessions:    f.sessions,
	}, zerolog.Nop())
	return f
}

func registerRequest() *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Email:     " Aina@Campus.edu.my ",
		Password:  "secret123",
		FirstName: "Aina",
		LastName:  "Rahman",
		StudentID: "tp061234",
	}
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	assert.Equal(t, "aina@campus.edu.my", resp.User.Email)
	assert.Equal(t, "TP061234", resp.User.StudentID)
	assert.NotEmpty(t, resp.Token.AccessToken)
	assert.Equal(t, []string{"aina@campus.edu.my"}, f.mailer.welcome)

	profile, err := f.students.GetProfile(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aina Rahman", profile.Name)
	assert.Empty(t, profile.Courses)

	_, err = f.svc.Register(ctx, registerRequest())
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)

	dup := registerRequest()
	dup.Email = "other@campus.edu.my"
	_, err = f.svc.Register(ctx, dup)
	assert.ErrorIs(t, err, apperrors.ErrIdentifierExists)

	login, err := f.svc.Login(ctx, &dto.LoginRequest{Email: "AINA@campus.edu.my", Password: "secret123"})
	require.NoError(t, err)
	assert.NotNil(t, login.User.LastLoginAt)

	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "aina@campus.edu.my", Password: "wrong-pass1"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "nobody@campus.edu.my", Password: "secret123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthService_RegisterRejectsWeakPassword(t *testing.T) {
	f := newAuthFixture()
	req := registerRequest()
	req.Password = "password"

	_, err := f.svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, auth.ErrWeakPassword)
	assert.Empty(t, f.users.byID)
}

func TestAuthService_LoginDisabledAccount(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	resp, err := f.svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	f.users.byID[resp.User.ID].IsActive = false

	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "aina@campus.edu.my", Password: "secret123"})
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}

func TestAuthService_RefreshRotatesToken(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	resp, err := f.svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	rotated, err := f.svc.RefreshToken(ctx, resp.Token.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, resp.Token.RefreshToken, rotated.RefreshToken)

	_, err = f.svc.RefreshToken(ctx, resp.Token.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)

	_, err = f.svc.RefreshToken(ctx, "  ")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	resp, err := f.svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	claims, err := f.jwt.ValidateAndExtractClaims(resp.Token.AccessToken)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, claims, resp.Token.RefreshToken))
	assert.Contains(t, f.revoker.jtis, claims.ID)
	assert.Equal(t, []int64{resp.User.ID}, f.sessions.ended)

	_, err = f.svc.RefreshToken(ctx, resp.Token.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)

	// an unknown refresh token does not fail the logout
	assert.NoError(t, f.svc.Logout(ctx, claims, "unknown"))
	assert.ErrorIs(t, f.svc.Logout(ctx, nil, ""), apperrors.ErrAuthRequired)
}

func TestAuthService_PasswordReset(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	resp, err := f.svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	require.NoError(t, f.svc.ForgotPassword(ctx, "nobody@campus.edu.my"))
	assert.Empty(t, f.mailer.resets)

	require.NoError(t, f.svc.ForgotPassword(ctx, "aina@campus.edu.my"))
	require.Len(t, f.mailer.resets, 1)
	token := f.mailer.resets[0].token

	assert.ErrorIs(t, f.svc.ResetPassword(ctx, token, "short"), auth.ErrWeakPassword)
	require.NoError(t, f.svc.ResetPassword(ctx, token, "newsecret42"))
	assert.ErrorIs(t, f.svc.ResetPassword(ctx, token, "newsecret42"), apperrors.ErrPasswordResetTokenUsed)
	assert.ErrorIs(t, f.svc.ResetPassword(ctx, "bogus", "newsecret42"), apperrors.ErrInvalidPasswordResetToken)

	_, err = f.svc.RefreshToken(ctx, resp.Token.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
	assert.Contains(t, f.sessions.ended, resp.User.ID)

	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "aina@campus.edu.my", Password: "newsecret42"})
	assert.NoError(t, err)
}

func TestAuthService_ResetTokenExpires(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	_, err := f.svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	require.NoError(t, f.svc.ForgotPassword(ctx, "aina@campus.edu.my"))

	impl := f.svc.(*authServiceImpl)
	impl.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	err = f.svc.ResetPassword(ctx, f.mailer.resets[0].token, "newsecret42")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPasswordResetToken)
}

func TestAuthService_GetCurrentUser(t *testing.T) {
	f := newAuthFixture()
	resp, err := f.svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	user, err := f.svc.GetCurrentUser(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aina", user.FirstName)

	_, err = f.svc.GetCurrentUser(context.Background(), 0)
	assert.ErrorIs(t, err, apperrors.ErrAuthRequired)
}
