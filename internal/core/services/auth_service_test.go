package services

import (
	"context"
	"testing"

	"clinicdesk/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthService(db *gorm.DB) (*AuthService, testRepos) {
	repos := newTestRepos(db)
	svc := NewAuthService(repos.users, repos.tokens, repos.doctors, repos.patients, testConfig())
	return svc, repos
}

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newAuthService(db)
	ctx := context.Background()

	user, err := svc.Register(ctx, &RegisterInput{
		Email:     "desk@clinic.test",
		Password:  "secret1",
		Role:      domain.RoleReceptionist,
		FirstName: "Front",
		LastName:  "Desk",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleReceptionist, user.Role)
	assert.True(t, user.IsActive)

	result, err := svc.Login(ctx, &LoginInput{Email: "desk@clinic.test", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, user.ID, result.User.ID)
}

func TestRegisterValidation(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newAuthService(db)
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterInput{
		Email: "x@clinic.test", Password: "secret1", Role: "superuser",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)

	_, err = svc.Register(ctx, &RegisterInput{
		Email: "x@clinic.test", Password: "short", Role: domain.RoleReceptionist,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPassword)

	_, err = svc.Register(ctx, &RegisterInput{
		Email: "dup@clinic.test", Password: "secret1", Role: domain.RoleReceptionist,
	})
	require.NoError(t, err)
	_, err = svc.Register(ctx, &RegisterInput{
		Email: "dup@clinic.test", Password: "secret1", Role: domain.RoleReceptionist,
	})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestLoginFailures(t *testing.T) {
	db := newTestDB(t)
	svc, repos := newAuthService(db)
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterInput{
		Email: "user@clinic.test", Password: "secret1", Role: domain.RoleReceptionist,
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &LoginInput{Email: "nobody@clinic.test", Password: "secret1"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &LoginInput{Email: "user@clinic.test", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	// A deactivated account fails distinctly, before the password check
	user, err := repos.users.GetByEmail(ctx, "user@clinic.test")
	require.NoError(t, err)
	user.IsActive = false
	require.NoError(t, repos.users.Update(ctx, user))

	_, err = svc.Login(ctx, &LoginInput{Email: "user@clinic.test", Password: "secret1"})
	assert.ErrorIs(t, err, domain.ErrAccountDeactivated)
}

func TestRefreshTokenRotation(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newAuthService(db)
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterInput{
		Email: "user@clinic.test", Password: "secret1", Role: domain.RoleReceptionist,
	})
	require.NoError(t, err)
	login, err := svc.Login(ctx, &LoginInput{Email: "user@clinic.test", Password: "secret1"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The spent token is dead
	_, err = svc.RefreshToken(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)

	// The rotated one still works
	_, err = svc.RefreshToken(ctx, refreshed.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshTokenRejectsGarbage(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newAuthService(db)

	_, err := svc.RefreshToken(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestLogoutRevokesToken(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newAuthService(db)
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterInput{
		Email: "user@clinic.test", Password: "secret1", Role: domain.RoleReceptionist,
	})
	require.NoError(t, err)
	login, err := svc.Login(ctx, &LoginInput{Email: "user@clinic.test", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, login.RefreshToken))

	_, err = svc.RefreshToken(ctx, login.RefreshToken)
	assert.Error(t, err)
}

func TestChangePassword(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newAuthService(db)
	ctx := context.Background()

	user, err := svc.Register(ctx, &RegisterInput{
		Email: "user@clinic.test", Password: "secret1", Role: domain.RoleReceptionist,
	})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user.ID, "wrong", "newsecret")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	err = svc.ChangePassword(ctx, user.ID, "secret1", "short")
	assert.ErrorIs(t, err, domain.ErrInvalidPassword)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "secret1", "newsecret"))

	_, err = svc.Login(ctx, &LoginInput{Email: "user@clinic.test", Password: "newsecret"})
	assert.NoError(t, err)
}
