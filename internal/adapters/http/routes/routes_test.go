package routes

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"clinicdesk/internal/adapters/persistence/models"
	"clinicdesk/internal/config"
	"clinicdesk/internal/core/domain"
	"clinicdesk/internal/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:routestestdb%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	cfg := &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:           "test-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}

	app := fiber.New()
	Setup(app, db, cfg)
	return app, db
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

func tokenFor(t *testing.T, user *models.User) string {
	t.Helper()

	token, err := jwt.GenerateAccessToken(user.ID, user.Email, string(user.Role), "test-secret", 15)
	require.NoError(t, err)
	return token
}

func TestDoctorOnboardingOpenToFrontDesk(t *testing.T) {
	app, db := newTestApp(t)
	receptionist := seedUser(t, db, "desk@clinic.test", domain.RoleReceptionist)

	body := `{"email":"dr.new@clinic.test","password":"secret1","first_name":"New","last_name":"Doctor","specialization":"Cardiology","consultation_fee":400}`
	req := httptest.NewRequest("POST", "/api/v1/doctors", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, receptionist))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.Doctor{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestDoctorUpdateOpenToFrontDesk(t *testing.T) {
	app, db := newTestApp(t)
	receptionist := seedUser(t, db, "desk@clinic.test", domain.RoleReceptionist)

	docUser := seedUser(t, db, "dr@clinic.test", domain.RoleDoctor)
	doctor := &models.Doctor{UserID: docUser.ID, Specialization: "General Medicine", ConsultationFee: 300}
	require.NoError(t, db.Create(doctor).Error)

	body := `{"consultation_fee":450}`
	req := httptest.NewRequest("PUT", fmt.Sprintf("/api/v1/doctors/%d", doctor.ID), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, receptionist))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestDoctorDirectoryIsCacheable(t *testing.T) {
	app, db := newTestApp(t)
	receptionist := seedUser(t, db, "desk@clinic.test", domain.RoleReceptionist)
	token := tokenFor(t, receptionist)

	req := httptest.NewRequest("GET", "/api/v1/doctors", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "public, max-age=300", resp.Header.Get("Cache-Control"))

	// Everything else under /api stays uncacheable
	req = httptest.NewRequest("GET", "/api/v1/appointments", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Cache-Control"), "no-store")
}

func TestDoctorOnboardingDeniedToClinicalRoles(t *testing.T) {
	app, db := newTestApp(t)
	patient := seedUser(t, db, "pat@clinic.test", domain.RolePatient)

	body := `{"email":"dr.new@clinic.test","password":"secret1","consultation_fee":400}`
	req := httptest.NewRequest("POST", "/api/v1/doctors", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, patient))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
