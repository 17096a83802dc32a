package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"clinicdesk/internal/adapters/persistence/models"
	"clinicdesk/internal/adapters/persistence/repositories"
	"clinicdesk/internal/config"
	"clinicdesk/internal/core/domain"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

// newTestDB opens a fresh in-memory database. cache=shared keeps the pool's
// connections on the same database; the sequence number isolates tests.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

type testRepos struct {
	users    repositories.UserRepository
	tokens   repositories.RefreshTokenRepository
	doctors  repositories.DoctorRepository
	patients repositories.PatientRepository
	appts    repositories.AppointmentRepository
	invoices repositories.InvoiceRepository
	records  repositories.MedicalRecordRepository
}

func newTestRepos(db *gorm.DB) testRepos {
	return testRepos{
		users:    repositories.NewUserRepository(db),
		tokens:   repositories.NewRefreshTokenRepository(db),
		doctors:  repositories.NewDoctorRepository(db),
		patients: repositories.NewPatientRepository(db),
		appts:    repositories.NewAppointmentRepository(db),
		invoices: repositories.NewInvoiceRepository(db),
		records:  repositories.NewMedicalRecordRepository(db),
	}
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
		Email:     email,
		Password:  "$2a$12$unused.hash.for.fixtures.only.aaaaaaaaaaaaaaaaaaaaaa",
		Role:      role,
		FirstName: "Test",
		LastName:  "User",
		IsActive:  true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedDoctor(t *testing.T, db *gorm.DB, email string, fee float64) *models.Doctor {
	t.Helper()

	user := seedUser(t, db, email, domain.RoleDoctor)
	doctor := &models.Doctor{
		UserID:            user.ID,
		Specialization:    "General Medicine",
		WorkingHoursStart: "09:00",
		WorkingHoursEnd:   "17:00",
		ConsultationFee:   fee,
	}
	require.NoError(t, db.Create(doctor).Error)
	doctor.User = user
	return doctor
}

func seedPatient(t *testing.T, db *gorm.DB, email string) *models.Patient {
	t.Helper()

	user := seedUser(t, db, email, domain.RolePatient)
	patient := &models.Patient{
		UserID: user.ID,
		Gender: "female",
	}
	require.NoError(t, db.Create(patient).Error)
	patient.User = user
	return patient
}

func principalFor(user *models.User) *domain.Principal {
	return user.ToPrincipal()
}
