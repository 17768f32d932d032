package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/models"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/apperrors"
)

func newTestJWT() *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  15 * time.Minute,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "campusphere-test",
	})
}

func testUser() *models.User {
	return &models.User{ID: 12, Email: "aina@campus.edu.my", RoleType: models.RoleStudent}
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestJWT()

	pair, err := svc.GenerateTokenPair(testUser())
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, int64(900), pair.ExpiresIn)
	assert.Equal(t, int64(86400), pair.RefreshExpiresIn)

	claims, err := svc.ValidateAndExtractClaims(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(12), claims.UserID)
	assert.Equal(t, "aina@campus.edu.my", claims.Email)
	assert.Equal(t, "STUDENT", claims.RoleType)
	assert.Equal(t, "campusphere-test", claims.Issuer)
	assert.NotEmpty(t, claims.ID)

	ttl := svc.RemainingLifetime(claims)
	assert.True(t, ttl > 14*time.Minute && ttl <= 15*time.Minute, "ttl %s", ttl)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := newTestJWT()
	pair, err := svc.GenerateTokenPair(testUser())
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = svc.ValidateToken(pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	pair, err := newTestJWT().GenerateTokenPair(testUser())
	require.NoError(t, err)

	other := NewJWTService(JWTConfig{SecretKey: "another", AccessTokenExp: time.Minute})
	_, err = other.ValidateToken(pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestValidateToken_Malformed(t *testing.T) {
	_, err := newTestJWT().ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = newTestJWT().ValidateAndExtractClaims("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", false},
		{"abc.def.ghi", "abc.def.ghi", false},
		{"Bearer ", "", true},
		{"", "", true},
		{"Basic dXNlcjpwYXNz", "", true},
	}
	for _, tt := range tests {
		got, err := ExtractBearerToken(tt.header)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidFormat, tt.header)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestRemainingLifetime_Past(t *testing.T) {
	svc := newTestJWT()
	assert.Zero(t, svc.RemainingLifetime(nil))
	assert.Zero(t, svc.RemainingLifetime(&Claims{}))
}

func TestGenerateOpaqueToken(t *testing.T) {
	a, b := GenerateOpaqueToken(), GenerateOpaqueToken()
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Passw0rd!")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "Passw0rd!"))
	assert.False(t, CheckPassword(hash, "passw0rd!"))
}

func TestValidatePasswordStrength(t *testing.T) {
	assert.NoError(t, ValidatePasswordStrength("abcdefg1"))
	assert.ErrorIs(t, ValidatePasswordStrength("short1"), ErrWeakPassword)
	assert.ErrorIs(t, ValidatePasswordStrength("12345678"), ErrWeakPassword)
	assert.ErrorIs(t, ValidatePasswordStrength("abcdefgh"), ErrWeakPassword)
}
