package services

import (
	"context"
	"errors"
	"log"

	"clinicdesk/internal/adapters/persistence/models"
	"clinicdesk/internal/adapters/persistence/repositories"
	"clinicdesk/internal/core/domain"

	"gorm.io/gorm"
)

// MedicalRecordService files medical records and drives the implicit
// appointment completion they trigger.
type MedicalRecordService struct {
	db         *gorm.DB
	recordRepo repositories.MedicalRecordRepository
	apptRepo   repositories.AppointmentRepository
	access     *AccessService
}

// NewMedicalRecordService creates a new medical record service
func NewMedicalRecordService(
	db *gorm.DB,
	recordRepo repositories.MedicalRecordRepository,
	apptRepo repositories.AppointmentRepository,
	access *AccessService,
) *MedicalRecordService {
	return &MedicalRecordService{
		db:         db,
		recordRepo: recordRepo,
		apptRepo:   apptRepo,
		access:     access,
	}
}

// CreateRecordInput represents a record filing request
type CreateRecordInput struct {
	AppointmentID uint   `json:"appointment_id"`
	Diagnosis     string `json:"diagnosis"`
	Treatment     string `json:"treatment"`
	Medications   string `json:"medications"`
	LabResults    string `json:"lab_results"`
	DoctorNotes   string `json:"doctor_notes"`
}

// File creates a medical record for an appointment. Only the doctor the
// appointment references may file, and the record insert and the
// scheduled->completed transition commit together or not at all.
// Filing against a cancelled or no_show appointment is rejected; filing
// against an already completed one adds the record without a transition.
func (s *MedicalRecordService) File(ctx context.Context, principal *domain.Principal, input *CreateRecordInput) (*models.MedicalRecord, error) {
	doctor, err := s.access.DoctorProfile(ctx, principal)
	if err != nil {
		return nil, err
	}

	var record *models.MedicalRecord

	err = s.db.Transaction(func(tx *gorm.DB) error {
		apptRepo := s.apptRepo.WithTx(tx)

		appt, err := apptRepo.GetByID(ctx, input.AppointmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrAppointmentNotFound
			}
			return err
		}

		// Ownership-by-relation: the appointment names its doctor
		if appt.DoctorID != doctor.ID {
			return &domain.ForbiddenError{
				ActualRole: principal.Role,
				Reason:     "appointment is assigned to another doctor",
			}
		}

		switch appt.Status {
		case models.ApptStatusScheduled:
			appt.Status = models.ApptStatusCompleted
			if err := apptRepo.Update(ctx, appt); err != nil {
				return err
			}
		case models.ApptStatusCompleted:
			// follow-up record, no transition
		default:
			return domain.ErrInvalidTransition
		}

		record = &models.MedicalRecord{
			AppointmentID: appt.ID,
			PatientID:     appt.PatientID,
			DoctorID:      doctor.ID,
			Diagnosis:     input.Diagnosis,
			Treatment:     input.Treatment,
			Medications:   input.Medications,
			LabResults:    input.LabResults,
			DoctorNotes:   input.DoctorNotes,
		}
		return s.recordRepo.WithTx(tx).Create(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Medical record %d filed for appointment %d", record.ID, record.AppointmentID)
	return record, nil
}

// ListByPatient lists a patient's records, gated by the patient-resource
// access rules (staff, linked doctor, or the patient themselves)
func (s *MedicalRecordService) ListByPatient(ctx context.Context, principal *domain.Principal, patientID uint) ([]*models.MedicalRecord, error) {
	if err := s.access.CanAccessPatient(ctx, principal, patientID); err != nil {
		return nil, err
	}
	return s.recordRepo.ListByPatient(ctx, patientID)
}
