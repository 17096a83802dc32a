package repositories

import (
	"context"
	"time"

	"clinicdesk/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// appointmentRepository implements AppointmentRepository interface
type appointmentRepository struct {
	db *gorm.DB
}

// NewAppointmentRepository creates a new appointment repository
func NewAppointmentRepository(db *gorm.DB) AppointmentRepository {
	return &appointmentRepository{db: db}
}

// WithTx returns the repository bound to a transaction handle
func (r *appointmentRepository) WithTx(tx *gorm.DB) AppointmentRepository {
	return &appointmentRepository{db: tx}
}

// Create creates a new appointment
func (r *appointmentRepository) Create(ctx context.Context, appt *models.Appointment) error {
	return r.db.WithContext(ctx).Create(appt).Error
}

// GetByID gets an appointment with doctor and patient info
func (r *appointmentRepository) GetByID(ctx context.Context, id uint) (*models.Appointment, error) {
	var appt models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Doctor").
		Preload("Doctor.User").
		Preload("Patient").
		Preload("Patient.User").
		Where("id = ?", id).
		First(&appt).Error
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// Update updates an appointment. Save writes every column including a
// cleared slot_key, which is how cancellation releases the slot.
func (r *appointmentRepository) Update(ctx context.Context, appt *models.Appointment) error {
	return r.db.WithContext(ctx).Save(appt).Error
}

// List lists appointments matching the filter, newest first
func (r *appointmentRepository) List(ctx context.Context, filter AppointmentFilter, offset, limit int) ([]*models.Appointment, int64, error) {
	var appts []*models.Appointment
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Appointment{})
	query = applyFilter(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Preload("Doctor").
		Preload("Doctor.User").
		Preload("Patient").
		Preload("Patient.User").
		Order("appointment_date DESC, appointment_time DESC").
		Offset(offset).Limit(limit).
		Find(&appts).Error; err != nil {
		return nil, 0, err
	}

	return appts, total, nil
}

// ListByPatient lists all of a patient's appointments, newest first
func (r *appointmentRepository) ListByPatient(ctx context.Context, patientID uint, filter AppointmentFilter) ([]*models.Appointment, error) {
	filter.PatientID = patientID

	var appts []*models.Appointment
	query := applyFilter(r.db.WithContext(ctx).Model(&models.Appointment{}), filter)
	err := query.
		Preload("Doctor").
		Preload("Doctor.User").
		Order("appointment_date DESC, appointment_time DESC").
		Find(&appts).Error
	if err != nil {
		return nil, err
	}
	return appts, nil
}

// SlotOccupied reports whether a non-cancelled appointment already holds the
// (doctor, date, time) slot. This is the friendly-error pre-check; the
// unique slot_key index is what actually serializes concurrent bookings.
func (r *appointmentRepository) SlotOccupied(ctx context.Context, doctorID uint, date time.Time, timeOfDay string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("doctor_id = ? AND appointment_date = ? AND appointment_time = ?", doctorID, date, timeOfDay).
		Where("status <> ?", models.ApptStatusCancelled).
		Count(&count).Error
	return count > 0, err
}

// ExistsByDoctorAndPatient reports whether any appointment links a doctor to
// a patient. Backs the authorization engine's ownership-by-relation rule.
func (r *appointmentRepository) ExistsByDoctorAndPatient(ctx context.Context, doctorID, patientID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("doctor_id = ? AND patient_id = ?", doctorID, patientID).
		Count(&count).Error
	return count > 0, err
}

func applyFilter(query *gorm.DB, filter AppointmentFilter) *gorm.DB {
	if filter.DoctorID != 0 {
		query = query.Where("doctor_id = ?", filter.DoctorID)
	}
	if filter.PatientID != 0 {
		query = query.Where("patient_id = ?", filter.PatientID)
	}
	if filter.Date != nil {
		query = query.Where("appointment_date = ?", *filter.Date)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	return query
}
