package services

import (
	"context"
	"errors"
	"testing"

	"clinicdesk/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAccessService(db *gorm.DB) (*AccessService, testRepos) {
	repos := newTestRepos(db)
	return NewAccessService(repos.doctors, repos.patients, repos.appts), repos
}

func TestRequireRoles(t *testing.T) {
	db := newTestDB(t)
	access, _ := newAccessService(db)

	admin := &domain.Principal{UserID: 1, Role: domain.RoleAdmin}
	receptionist := &domain.Principal{UserID: 2, Role: domain.RoleReceptionist}
	patient := &domain.Principal{UserID: 3, Role: domain.RolePatient}

	// Admin passes every gate, even one that does not list admin
	assert.NoError(t, access.RequireRoles(admin, "appointment:book", domain.RoleReceptionist))

	assert.NoError(t, access.RequireRoles(receptionist, "appointment:book", domain.RoleReceptionist))

	err := access.RequireRoles(patient, "appointment:book", domain.RoleReceptionist)
	assert.True(t, domain.IsForbidden(err))

	var forbidden *domain.ForbiddenError
	require.True(t, errors.As(err, &forbidden))
	assert.Equal(t, "appointment:book", forbidden.Action)
	assert.Equal(t, []domain.Role{domain.RoleReceptionist}, forbidden.RequiredRoles)
	assert.Equal(t, domain.RolePatient, forbidden.ActualRole)
}

func TestCanAccessPatientRelationalRule(t *testing.T) {
	db := newTestDB(t)
	access, repos := newAccessService(db)
	doctor := seedDoctor(t, db, "doc@clinic.test", 500)
	unrelated := seedDoctor(t, db, "unrelated@clinic.test", 500)
	patient := seedPatient(t, db, "pat@clinic.test")

	ctx := context.Background()

	// No appointment yet: the doctor has no path to the patient
	err := access.CanAccessPatient(ctx, principalFor(doctor.User), patient.ID)
	assert.True(t, domain.IsForbidden(err))

	// An appointment creates the link
	apptSvc := NewAppointmentService(db, repos.appts, repos.doctors, repos.patients, repos.invoices, access)
	_, err = apptSvc.Book(ctx, &BookInput{
		DoctorID: doctor.ID, PatientID: patient.ID, Date: "2026-09-10", Time: "10:00",
	}, 1)
	require.NoError(t, err)

	assert.NoError(t, access.CanAccessPatient(ctx, principalFor(doctor.User), patient.ID))

	// The link is per doctor, not per role
	err = access.CanAccessPatient(ctx, principalFor(unrelated.User), patient.ID)
	assert.True(t, domain.IsForbidden(err))
}

func TestCanAccessPatientSelfAndStaff(t *testing.T) {
	db := newTestDB(t)
	access, _ := newAccessService(db)
	patient := seedPatient(t, db, "pat@clinic.test")
	other := seedPatient(t, db, "other@clinic.test")
	admin := seedUser(t, db, "admin@clinic.test", domain.RoleAdmin)
	receptionist := seedUser(t, db, "desk@clinic.test", domain.RoleReceptionist)

	ctx := context.Background()

	assert.NoError(t, access.CanAccessPatient(ctx, principalFor(admin), patient.ID))
	assert.NoError(t, access.CanAccessPatient(ctx, principalFor(receptionist), patient.ID))
	assert.NoError(t, access.CanAccessPatient(ctx, principalFor(patient.User), patient.ID))

	err := access.CanAccessPatient(ctx, principalFor(other.User), patient.ID)
	assert.True(t, domain.IsForbidden(err))
}

func TestCanAccessUser(t *testing.T) {
	db := newTestDB(t)
	access, _ := newAccessService(db)

	admin := &domain.Principal{UserID: 1, Role: domain.RoleAdmin}
	user := &domain.Principal{UserID: 2, Role: domain.RoleReceptionist}

	assert.NoError(t, access.CanAccessUser(admin, 99))
	assert.NoError(t, access.CanAccessUser(user, 2))
	assert.True(t, domain.IsForbidden(access.CanAccessUser(user, 3)))
}
