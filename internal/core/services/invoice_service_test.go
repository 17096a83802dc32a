package services

import (
	"context"
	"testing"

	"clinicdesk/internal/adapters/persistence/models"
	"clinicdesk/internal/adapters/persistence/repositories"
	"clinicdesk/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newInvoiceFixture(t *testing.T, db *gorm.DB) (*InvoiceService, *AppointmentService, testRepos) {
	repos := newTestRepos(db)
	access := NewAccessService(repos.doctors, repos.patients, repos.appts)
	invSvc := NewInvoiceService(repos.invoices, repos.patients, access)
	apptSvc := NewAppointmentService(db, repos.appts, repos.doctors, repos.patients, repos.invoices, access)
	return invSvc, apptSvc, repos
}

func TestInvoiceListScopedToPatient(t *testing.T) {
	db := newTestDB(t)
	invSvc, apptSvc, _ := newInvoiceFixture(t, db)
	ctx := context.Background()

	doctor := seedDoctor(t, db, "dr@clinic.test", 300)
	patA := seedPatient(t, db, "a@clinic.test")
	patB := seedPatient(t, db, "b@clinic.test")

	_, err := apptSvc.Book(ctx, &BookInput{DoctorID: doctor.ID, PatientID: patA.ID, Date: "2026-09-10", Time: "10:00"}, 1)
	require.NoError(t, err)
	_, err = apptSvc.Book(ctx, &BookInput{DoctorID: doctor.ID, PatientID: patB.ID, Date: "2026-09-10", Time: "11:00"}, 1)
	require.NoError(t, err)

	admin := seedUser(t, db, "admin@clinic.test", domain.RoleAdmin)
	all, total, err := invSvc.List(ctx, principalFor(admin), repositories.InvoiceFilter{}, 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)

	// A patient asking for someone else's invoices still only gets their own
	own, total, err := invSvc.List(ctx, principalFor(patA.User), repositories.InvoiceFilter{PatientID: patB.ID}, 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, own, 1)
	assert.Equal(t, patA.ID, own[0].PatientID)
}

func TestInvoiceListValidatesStatus(t *testing.T) {
	db := newTestDB(t)
	invSvc, _, _ := newInvoiceFixture(t, db)

	admin := seedUser(t, db, "admin@clinic.test", domain.RoleAdmin)
	_, _, err := invSvc.List(context.Background(), principalFor(admin), repositories.InvoiceFilter{PaymentStatus: "overdue"}, 0, 20)
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentStatus)
}

func TestInvoiceGetEnforcesOwnership(t *testing.T) {
	db := newTestDB(t)
	invSvc, apptSvc, repos := newInvoiceFixture(t, db)
	ctx := context.Background()

	doctor := seedDoctor(t, db, "dr@clinic.test", 300)
	patA := seedPatient(t, db, "a@clinic.test")
	patB := seedPatient(t, db, "b@clinic.test")

	appt, err := apptSvc.Book(ctx, &BookInput{DoctorID: doctor.ID, PatientID: patA.ID, Date: "2026-09-10", Time: "10:00"}, 1)
	require.NoError(t, err)
	invoice, err := repos.invoices.GetByAppointmentID(ctx, appt.ID)
	require.NoError(t, err)

	got, err := invSvc.GetByID(ctx, principalFor(patA.User), invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.InvoiceNumber, got.InvoiceNumber)

	_, err = invSvc.GetByID(ctx, principalFor(patB.User), invoice.ID)
	var forbidden *domain.ForbiddenError
	assert.ErrorAs(t, err, &forbidden)

	_, err = invSvc.GetByID(ctx, principalFor(patA.User), invoice.ID+99)
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
}

func TestUpdatePaymentStatus(t *testing.T) {
	db := newTestDB(t)
	invSvc, apptSvc, repos := newInvoiceFixture(t, db)
	ctx := context.Background()

	doctor := seedDoctor(t, db, "dr@clinic.test", 300)
	patient := seedPatient(t, db, "pat@clinic.test")

	appt, err := apptSvc.Book(ctx, &BookInput{DoctorID: doctor.ID, PatientID: patient.ID, Date: "2026-09-10", Time: "10:00"}, 1)
	require.NoError(t, err)
	invoice, err := repos.invoices.GetByAppointmentID(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, invoice.PaymentStatus)

	updated, err := invSvc.UpdatePaymentStatus(ctx, invoice.ID, "paid")
	require.NoError(t, err)
	assert.Equal(t, "paid", updated.PaymentStatus)

	_, err = invSvc.UpdatePaymentStatus(ctx, invoice.ID, "overdue")
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentStatus)
}
