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

func newRecordService(db *gorm.DB) (*MedicalRecordService, *AppointmentService, testRepos) {
	repos := newTestRepos(db)
	access := NewAccessService(repos.doctors, repos.patients, repos.appts)
	recordSvc := NewMedicalRecordService(db, repos.records, repos.appts, access)
	apptSvc := NewAppointmentService(db, repos.appts, repos.doctors, repos.patients, repos.invoices, access)
	return recordSvc, apptSvc, repos
}

func TestFilingRecordCompletesAppointment(t *testing.T) {
	db := newTestDB(t)
	recordSvc, apptSvc, repos := newRecordService(db)
	doctor := seedDoctor(t, db, "doc@clinic.test", 500)
	patient := seedPatient(t, db, "pat@clinic.test")

	ctx := context.Background()
	appt, err := apptSvc.Book(ctx, &BookInput{
		DoctorID: doctor.ID, PatientID: patient.ID, Date: "2026-09-10", Time: "10:00",
	}, 1)
	require.NoError(t, err)

	record, err := recordSvc.File(ctx, principalFor(doctor.User), &CreateRecordInput{
		AppointmentID: appt.ID,
		Diagnosis:     "seasonal flu",
		Treatment:     "rest and fluids",
	})
	require.NoError(t, err)
	assert.Equal(t, patient.ID, record.PatientID)
	assert.Equal(t, doctor.ID, record.DoctorID)

	reloaded, err := repos.appts.GetByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApptStatusCompleted, reloaded.Status)
}

func TestFilingByAnotherDoctorIsForbidden(t *testing.T) {
	db := newTestDB(t)
	recordSvc, apptSvc, _ := newRecordService(db)
	owner := seedDoctor(t, db, "owner@clinic.test", 500)
	other := seedDoctor(t, db, "other@clinic.test", 500)
	patient := seedPatient(t, db, "pat@clinic.test")

	ctx := context.Background()
	appt, err := apptSvc.Book(ctx, &BookInput{
		DoctorID: owner.ID, PatientID: patient.ID, Date: "2026-09-10", Time: "10:00",
	}, 1)
	require.NoError(t, err)

	_, err = recordSvc.File(ctx, principalFor(other.User), &CreateRecordInput{
		AppointmentID: appt.ID,
		Diagnosis:     "should not be filed",
	})
	assert.True(t, domain.IsForbidden(err))

	var count int64
	db.Model(&models.MedicalRecord{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestFilingAgainstCancelledAppointmentRejected(t *testing.T) {
	db := newTestDB(t)
	recordSvc, apptSvc, repos := newRecordService(db)
	doctor := seedDoctor(t, db, "doc@clinic.test", 500)
	patient := seedPatient(t, db, "pat@clinic.test")

	ctx := context.Background()
	appt, err := apptSvc.Book(ctx, &BookInput{
		DoctorID: doctor.ID, PatientID: patient.ID, Date: "2026-09-10", Time: "10:00",
	}, 1)
	require.NoError(t, err)

	cancelled := models.ApptStatusCancelled
	_, err = apptSvc.Update(ctx, staffPrincipal(), appt.ID, &UpdateAppointmentInput{Status: &cancelled})
	require.NoError(t, err)

	_, err = recordSvc.File(ctx, principalFor(doctor.User), &CreateRecordInput{
		AppointmentID: appt.ID,
		Diagnosis:     "too late",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// Nothing changed and nothing was written
	reloaded, err := repos.appts.GetByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApptStatusCancelled, reloaded.Status)

	var count int64
	db.Model(&models.MedicalRecord{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestFollowUpRecordOnCompletedAppointment(t *testing.T) {
	db := newTestDB(t)
	recordSvc, apptSvc, _ := newRecordService(db)
	doctor := seedDoctor(t, db, "doc@clinic.test", 500)
	patient := seedPatient(t, db, "pat@clinic.test")

	ctx := context.Background()
	appt, err := apptSvc.Book(ctx, &BookInput{
		DoctorID: doctor.ID, PatientID: patient.ID, Date: "2026-09-10", Time: "10:00",
	}, 1)
	require.NoError(t, err)

	_, err = recordSvc.File(ctx, principalFor(doctor.User), &CreateRecordInput{
		AppointmentID: appt.ID, Diagnosis: "initial finding",
	})
	require.NoError(t, err)

	// Second record against the now completed appointment
	_, err = recordSvc.File(ctx, principalFor(doctor.User), &CreateRecordInput{
		AppointmentID: appt.ID, Diagnosis: "lab results attached", LabResults: "CBC normal",
	})
	require.NoError(t, err)

	var count int64
	db.Model(&models.MedicalRecord{}).Count(&count)
	assert.EqualValues(t, 2, count)
}

func TestListRecordsByPatientAccess(t *testing.T) {
	db := newTestDB(t)
	recordSvc, apptSvc, _ := newRecordService(db)
	doctor := seedDoctor(t, db, "doc@clinic.test", 500)
	patient := seedPatient(t, db, "pat@clinic.test")
	stranger := seedPatient(t, db, "stranger@clinic.test")

	ctx := context.Background()
	appt, err := apptSvc.Book(ctx, &BookInput{
		DoctorID: doctor.ID, PatientID: patient.ID, Date: "2026-09-10", Time: "10:00",
	}, 1)
	require.NoError(t, err)
	_, err = recordSvc.File(ctx, principalFor(doctor.User), &CreateRecordInput{
		AppointmentID: appt.ID, Diagnosis: "flu",
	})
	require.NoError(t, err)

	// The patient reads their own history
	records, err := recordSvc.ListByPatient(ctx, principalFor(patient.User), patient.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	// Another patient does not
	_, err = recordSvc.ListByPatient(ctx, principalFor(stranger.User), patient.ID)
	assert.True(t, domain.IsForbidden(err))

	// The treating doctor does
	records, err = recordSvc.ListByPatient(ctx, principalFor(doctor.User), patient.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
