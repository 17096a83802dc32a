package repositories

import (
	"context"
	"time"

	"clinicdesk/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// UserRepository defines user repository interface
type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, role, search string, offset, limit int) ([]*models.User, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CountByRole(ctx context.Context, role string) (int64, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	WithTx(tx *gorm.DB) RefreshTokenRepository
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// DoctorRepository defines doctor repository interface,
// holiday blackout dates included
type DoctorRepository interface {
	WithTx(tx *gorm.DB) DoctorRepository
	Create(ctx context.Context, doctor *models.Doctor) error
	GetByID(ctx context.Context, id uint) (*models.Doctor, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Doctor, error)
	Update(ctx context.Context, doctor *models.Doctor) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]*models.Doctor, error)
	AddHoliday(ctx context.Context, holiday *models.DoctorHoliday) error
	ListHolidays(ctx context.Context, doctorID uint) ([]models.DoctorHoliday, error)
	DeleteHoliday(ctx context.Context, doctorID, holidayID uint) error
	IsHoliday(ctx context.Context, doctorID uint, date time.Time) (bool, error)
}

// PatientRepository defines patient repository interface
type PatientRepository interface {
	WithTx(tx *gorm.DB) PatientRepository
	Create(ctx context.Context, patient *models.Patient) error
	GetByID(ctx context.Context, id uint) (*models.Patient, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Patient, error)
	Update(ctx context.Context, patient *models.Patient) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, search string, offset, limit int) ([]*models.Patient, int64, error)
}

// AppointmentFilter narrows appointment listing
type AppointmentFilter struct {
	DoctorID  uint
	PatientID uint
	Date      *time.Time
	Status    models.AppointmentStatus
}

// AppointmentRepository defines appointment repository interface
type AppointmentRepository interface {
	WithTx(tx *gorm.DB) AppointmentRepository
	Create(ctx context.Context, appt *models.Appointment) error
	GetByID(ctx context.Context, id uint) (*models.Appointment, error)
	Update(ctx context.Context, appt *models.Appointment) error
	List(ctx context.Context, filter AppointmentFilter, offset, limit int) ([]*models.Appointment, int64, error)
	ListByPatient(ctx context.Context, patientID uint, filter AppointmentFilter) ([]*models.Appointment, error)
	SlotOccupied(ctx context.Context, doctorID uint, date time.Time, timeOfDay string) (bool, error)
	ExistsByDoctorAndPatient(ctx context.Context, doctorID, patientID uint) (bool, error)
}

// InvoiceFilter narrows invoice listing
type InvoiceFilter struct {
	PatientID     uint
	PaymentStatus string
}

// InvoiceRepository defines invoice repository interface
type InvoiceRepository interface {
	WithTx(tx *gorm.DB) InvoiceRepository
	Create(ctx context.Context, invoice *models.Invoice) error
	GetByID(ctx context.Context, id uint) (*models.Invoice, error)
	GetByAppointmentID(ctx context.Context, appointmentID uint) (*models.Invoice, error)
	Update(ctx context.Context, invoice *models.Invoice) error
	List(ctx context.Context, filter InvoiceFilter, offset, limit int) ([]*models.Invoice, int64, error)
}

// MedicalRecordRepository defines medical record repository interface
type MedicalRecordRepository interface {
	WithTx(tx *gorm.DB) MedicalRecordRepository
	Create(ctx context.Context, record *models.MedicalRecord) error
	GetByID(ctx context.Context, id uint) (*models.MedicalRecord, error)
	ListByPatient(ctx context.Context, patientID uint) ([]*models.MedicalRecord, error)
	ListByAppointment(ctx context.Context, appointmentID uint) ([]*models.MedicalRecord, error)
}
