package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"clinicdesk/internal/adapters/persistence/models"
	"clinicdesk/internal/adapters/persistence/repositories"
	"clinicdesk/internal/config"
	"clinicdesk/internal/core/domain"
	"clinicdesk/internal/core/services"
	"clinicdesk/internal/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:mwtestdb%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:           "test-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}
}

func seedUser(t *testing.T, db *gorm.DB, email string, role domain.Role) *models.User {
	t.Helper()

	user := &models.User{
		Email:    email,
		Password: "$2a$12$unused.hash.for.fixtures.only.aaaaaaaaaaaaaaaaaaaaaa",
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func newProtectedApp(t *testing.T, db *gorm.DB, extra ...fiber.Handler) *fiber.App {
	t.Helper()

	cfg := testConfig()
	userRepo := repositories.NewUserRepository(db)

	app := fiber.New()
	handlers := append([]fiber.Handler{AuthMiddleware(cfg, userRepo)}, extra...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		principal := Principal(c)
		require.NotNil(t, principal)
		return c.JSON(fiber.Map{"user_id": principal.UserID, "role": principal.Role})
	})
	app.Get("/protected", handlers...)
	return app
}

func accessTokenFor(t *testing.T, user *models.User) string {
	t.Helper()

	token, err := jwt.GenerateAccessToken(user.ID, user.Email, string(user.Role), "test-secret", 15)
	require.NoError(t, err)
	return token
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	db := newTestDB(t)
	app := newProtectedApp(t, db)

	req := httptest.NewRequest("GET", "/protected", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddlewareAcceptsBearerToken(t *testing.T) {
	db := newTestDB(t)
	app := newProtectedApp(t, db)
	user := seedUser(t, db, "user@clinic.test", domain.RoleReceptionist)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, user))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAuthMiddlewareAcceptsCookieToken(t *testing.T) {
	db := newTestDB(t)
	app := newProtectedApp(t, db)
	user := seedUser(t, db, "user@clinic.test", domain.RoleReceptionist)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: accessTokenFor(t, user)})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAuthMiddlewareRejectsDeactivatedAccount(t *testing.T) {
	db := newTestDB(t)
	app := newProtectedApp(t, db)
	user := seedUser(t, db, "user@clinic.test", domain.RoleReceptionist)
	token := accessTokenFor(t, user)

	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddlewareRejectsDeletedAccount(t *testing.T) {
	db := newTestDB(t)
	app := newProtectedApp(t, db)
	user := seedUser(t, db, "user@clinic.test", domain.RoleReceptionist)
	token := accessTokenFor(t, user)

	require.NoError(t, db.Delete(user).Error)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireRolesGate(t *testing.T) {
	db := newTestDB(t)
	access := services.NewAccessService(
		repositories.NewDoctorRepository(db),
		repositories.NewPatientRepository(db),
		repositories.NewAppointmentRepository(db),
	)
	app := newProtectedApp(t, db, RequireRoles(access, "test:action", domain.RoleReceptionist))

	receptionist := seedUser(t, db, "desk@clinic.test", domain.RoleReceptionist)
	patient := seedUser(t, db, "patient@clinic.test", domain.RolePatient)
	admin := seedUser(t, db, "admin@clinic.test", domain.RoleAdmin)

	cases := []struct {
		user *models.User
		want int
	}{
		{receptionist, fiber.StatusOK},
		{patient, fiber.StatusForbidden},
		{admin, fiber.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, tc.user))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, tc.want, resp.StatusCode, "role %s", tc.user.Role)
	}
}
