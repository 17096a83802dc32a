package repositories

import (
	"context"
	"time"

	"clinicdesk/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// doctorRepository implements DoctorRepository interface
type doctorRepository struct {
	db *gorm.DB
}

// NewDoctorRepository creates a new doctor repository
func NewDoctorRepository(db *gorm.DB) DoctorRepository {
	return &doctorRepository{db: db}
}

// WithTx returns the repository bound to a transaction handle
func (r *doctorRepository) WithTx(tx *gorm.DB) DoctorRepository {
	return &doctorRepository{db: tx}
}

// Create creates a new doctor profile
func (r *doctorRepository) Create(ctx context.Context, doctor *models.Doctor) error {
	return r.db.WithContext(ctx).Create(doctor).Error
}

// GetByID gets a doctor by ID with user info and holidays
func (r *doctorRepository) GetByID(ctx context.Context, id uint) (*models.Doctor, error) {
	var doctor models.Doctor
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Holidays").
		Where("id = ?", id).
		First(&doctor).Error
	if err != nil {
		return nil, err
	}
	return &doctor, nil
}

// GetByUserID gets the doctor profile owned by a user
func (r *doctorRepository) GetByUserID(ctx context.Context, userID uint) (*models.Doctor, error) {
	var doctor models.Doctor
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&doctor).Error
	if err != nil {
		return nil, err
	}
	return &doctor, nil
}

// Update updates a doctor profile
func (r *doctorRepository) Update(ctx context.Context, doctor *models.Doctor) error {
	return r.db.WithContext(ctx).Save(doctor).Error
}

// Delete deletes a doctor profile and its holidays
func (r *doctorRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).
		Where("doctor_id = ?", id).
		Delete(&models.DoctorHoliday{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&models.Doctor{}, id).Error
}

// List lists doctors of active users, ordered by name
func (r *doctorRepository) List(ctx context.Context) ([]*models.Doctor, error) {
	var doctors []*models.Doctor
	err := r.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN users ON users.id = doctors.user_id").
		Where("users.is_active = ?", true).
		Where("users.deleted_at IS NULL").
		Order("users.first_name, users.last_name").
		Find(&doctors).Error
	if err != nil {
		return nil, err
	}
	return doctors, nil
}

// AddHoliday adds a blackout date; the unique index rejects duplicates
func (r *doctorRepository) AddHoliday(ctx context.Context, holiday *models.DoctorHoliday) error {
	return r.db.WithContext(ctx).Create(holiday).Error
}

// ListHolidays lists a doctor's blackout dates in calendar order
func (r *doctorRepository) ListHolidays(ctx context.Context, doctorID uint) ([]models.DoctorHoliday, error) {
	var holidays []models.DoctorHoliday
	err := r.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("holiday_date").
		Find(&holidays).Error
	if err != nil {
		return nil, err
	}
	return holidays, nil
}

// DeleteHoliday removes a blackout date
func (r *doctorRepository) DeleteHoliday(ctx context.Context, doctorID, holidayID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND doctor_id = ?", holidayID, doctorID).
		Delete(&models.DoctorHoliday{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsHoliday checks whether a date is blacked out for a doctor.
// Callers pass dates normalized to midnight UTC so equality is exact.
func (r *doctorRepository) IsHoliday(ctx context.Context, doctorID uint, date time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.DoctorHoliday{}).
		Where("doctor_id = ? AND holiday_date = ?", doctorID, date).
		Count(&count).Error
	return count > 0, err
}
