package repositories

import (
	"context"

	"clinicdesk/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// medicalRecordRepository implements MedicalRecordRepository interface
type medicalRecordRepository struct {
	db *gorm.DB
}

// NewMedicalRecordRepository creates a new medical record repository
func NewMedicalRecordRepository(db *gorm.DB) MedicalRecordRepository {
	return &medicalRecordRepository{db: db}
}

// WithTx returns the repository bound to a transaction handle
func (r *medicalRecordRepository) WithTx(tx *gorm.DB) MedicalRecordRepository {
	return &medicalRecordRepository{db: tx}
}

// Create creates a new medical record
func (r *medicalRecordRepository) Create(ctx context.Context, record *models.MedicalRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// GetByID gets a medical record with its appointment and doctor info
func (r *medicalRecordRepository) GetByID(ctx context.Context, id uint) (*models.MedicalRecord, error) {
	var record models.MedicalRecord
	err := r.db.WithContext(ctx).
		Preload("Appointment").
		Preload("Doctor").
		Preload("Doctor.User").
		Where("id = ?", id).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListByPatient lists a patient's records, newest appointment first
func (r *medicalRecordRepository) ListByPatient(ctx context.Context, patientID uint) ([]*models.MedicalRecord, error) {
	var records []*models.MedicalRecord
	err := r.db.WithContext(ctx).
		Preload("Appointment").
		Preload("Doctor").
		Preload("Doctor.User").
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ListByAppointment lists the records filed against one appointment
func (r *medicalRecordRepository) ListByAppointment(ctx context.Context, appointmentID uint) ([]*models.MedicalRecord, error) {
	var records []*models.MedicalRecord
	err := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
