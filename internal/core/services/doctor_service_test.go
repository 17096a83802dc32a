package services

import (
	"context"
	"testing"

	"clinicdesk/internal/adapters/persistence/models"
	"clinicdesk/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newDoctorService(db *gorm.DB) (*DoctorService, testRepos) {
	repos := newTestRepos(db)
	return NewDoctorService(db, repos.doctors, repos.users), repos
}

func TestCreateDoctorCreatesUserAndProfile(t *testing.T) {
	db := newTestDB(t)
	svc, repos := newDoctorService(db)
	ctx := context.Background()

	doctor, err := svc.Create(ctx, &CreateDoctorInput{
		Email:           "dr.house@clinic.test",
		Password:        "secret1",
		FirstName:       "Gregory",
		LastName:        "House",
		Specialization:  "Diagnostics",
		ConsultationFee: 500,
	})
	require.NoError(t, err)
	assert.Equal(t, "Diagnostics", doctor.Specialization)
	assert.Equal(t, 500.0, doctor.ConsultationFee)

	user, err := repos.users.GetByEmail(ctx, "dr.house@clinic.test")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleDoctor, user.Role)
	assert.Equal(t, user.ID, doctor.UserID)
}

func TestCreateDoctorDuplicateEmailRollsBack(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newDoctorService(db)
	ctx := context.Background()

	seedUser(t, db, "taken@clinic.test", domain.RoleReceptionist)

	_, err := svc.Create(ctx, &CreateDoctorInput{
		Email:    "taken@clinic.test",
		Password: "secret1",
	})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	var count int64
	require.NoError(t, db.Model(&models.Doctor{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestHolidayLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newDoctorService(db)
	ctx := context.Background()

	doctor := seedDoctor(t, db, "dr.who@clinic.test", 300)

	holiday, err := svc.AddHoliday(ctx, doctor.ID, "2026-12-25", "Christmas")
	require.NoError(t, err)
	assert.Equal(t, "Christmas", holiday.Reason)

	// Same date twice is a conflict
	_, err = svc.AddHoliday(ctx, doctor.ID, "2026-12-25", "again")
	assert.ErrorIs(t, err, domain.ErrHolidayExists)

	holidays, err := svc.ListHolidays(ctx, doctor.ID)
	require.NoError(t, err)
	require.Len(t, holidays, 1)

	require.NoError(t, svc.RemoveHoliday(ctx, doctor.ID, holiday.ID))
	holidays, err = svc.ListHolidays(ctx, doctor.ID)
	require.NoError(t, err)
	assert.Empty(t, holidays)
}

func TestAddHolidayValidation(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newDoctorService(db)
	ctx := context.Background()

	doctor := seedDoctor(t, db, "dr.no@clinic.test", 300)

	_, err := svc.AddHoliday(ctx, doctor.ID, "25-12-2026", "bad format")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.AddHoliday(ctx, doctor.ID+99, "2026-12-25", "ghost doctor")
	assert.ErrorIs(t, err, domain.ErrDoctorNotFound)

	err = svc.RemoveHoliday(ctx, doctor.ID, 12345)
	assert.ErrorIs(t, err, domain.ErrHolidayNotFound)
}

func TestUpdateDoctor(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newDoctorService(db)
	ctx := context.Background()

	doctor := seedDoctor(t, db, "dr.fee@clinic.test", 300)

	newFee := 450.0
	updated, err := svc.Update(ctx, doctor.ID, &UpdateDoctorInput{ConsultationFee: &newFee})
	require.NoError(t, err)
	assert.Equal(t, 450.0, updated.ConsultationFee)

	_, err = svc.Update(ctx, doctor.ID+99, &UpdateDoctorInput{ConsultationFee: &newFee})
	assert.ErrorIs(t, err, domain.ErrDoctorNotFound)
}
