package repositories

import (
	"context"

	"clinicdesk/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// patientRepository implements PatientRepository interface
type patientRepository struct {
	db *gorm.DB
}

// NewPatientRepository creates a new patient repository
func NewPatientRepository(db *gorm.DB) PatientRepository {
	return &patientRepository{db: db}
}

// WithTx returns the repository bound to a transaction handle
func (r *patientRepository) WithTx(tx *gorm.DB) PatientRepository {
	return &patientRepository{db: tx}
}

// Create creates a new patient profile
func (r *patientRepository) Create(ctx context.Context, patient *models.Patient) error {
	return r.db.WithContext(ctx).Create(patient).Error
}

// GetByID gets a patient by ID with user info
func (r *patientRepository) GetByID(ctx context.Context, id uint) (*models.Patient, error) {
	var patient models.Patient
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ?", id).
		First(&patient).Error
	if err != nil {
		return nil, err
	}
	return &patient, nil
}

// GetByUserID gets the patient profile owned by a user
func (r *patientRepository) GetByUserID(ctx context.Context, userID uint) (*models.Patient, error) {
	var patient models.Patient
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&patient).Error
	if err != nil {
		return nil, err
	}
	return &patient, nil
}

// Update updates a patient profile
func (r *patientRepository) Update(ctx context.Context, patient *models.Patient) error {
	return r.db.WithContext(ctx).Save(patient).Error
}

// Delete deletes a patient profile
func (r *patientRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Patient{}, id).Error
}

// List lists patients with name/email/id-card search and pagination
func (r *patientRepository) List(ctx context.Context, search string, offset, limit int) ([]*models.Patient, int64, error) {
	var patients []*models.Patient
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.Patient{}).
		Joins("JOIN users ON users.id = patients.user_id").
		Where("users.deleted_at IS NULL")

	if search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"users.first_name LIKE ? OR users.last_name LIKE ? OR users.email LIKE ? OR users.id_card_number LIKE ?",
			like, like, like, like,
		)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Preload("User").
		Order("patients.created_at DESC").
		Offset(offset).Limit(limit).
		Find(&patients).Error; err != nil {
		return nil, 0, err
	}

	return patients, total, nil
}
