package services

import (
	"context"
	"errors"
	"log"

	"clinicdesk/internal/adapters/persistence/models"
	"clinicdesk/internal/adapters/persistence/repositories"
	"clinicdesk/internal/core/domain"
	"clinicdesk/internal/pkg/password"

	"gorm.io/gorm"
)

// DoctorService handles doctor onboarding and profile management
type DoctorService struct {
	db         *gorm.DB
	doctorRepo repositories.DoctorRepository
	userRepo   repositories.UserRepository
}

// NewDoctorService creates a new doctor service
func NewDoctorService(db *gorm.DB, doctorRepo repositories.DoctorRepository, userRepo repositories.UserRepository) *DoctorService {
	return &DoctorService{
		db:         db,
		doctorRepo: doctorRepo,
		userRepo:   userRepo,
	}
}

// CreateDoctorInput represents doctor onboarding input
type CreateDoctorInput struct {
	Email             string  `json:"email"`
	Username          string  `json:"username"`
	Password          string  `json:"password"`
	FirstName         string  `json:"first_name"`
	LastName          string  `json:"last_name"`
	Phone             string  `json:"phone"`
	Address           string  `json:"address"`
	IDCardNumber      string  `json:"id_card_number"`
	Specialization    string  `json:"specialization"`
	WorkingHoursStart string  `json:"working_hours_start"`
	WorkingHoursEnd   string  `json:"working_hours_end"`
	ConsultationFee   float64 `json:"consultation_fee"`
	ExperienceSummary string  `json:"experience_summary"`
}

// UpdateDoctorInput represents doctor profile update input.
// Nil fields are left unchanged.
type UpdateDoctorInput struct {
	Specialization    *string  `json:"specialization"`
	WorkingHoursStart *string  `json:"working_hours_start"`
	WorkingHoursEnd   *string  `json:"working_hours_end"`
	ConsultationFee   *float64 `json:"consultation_fee"`
	ExperienceSummary *string  `json:"experience_summary"`
}

// Create onboards a doctor: the user account and the doctor profile are
// inserted in one transaction
func (s *DoctorService) Create(ctx context.Context, input *CreateDoctorInput) (*models.Doctor, error) {
	if !password.Validate(input.Password) {
		return nil, domain.ErrInvalidPassword
	}

	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	var doctor *models.Doctor

	err = s.db.Transaction(func(tx *gorm.DB) error {
		userRepo := s.userRepo.WithTx(tx)

		exists, err := userRepo.ExistsByEmail(ctx, input.Email)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrEmailTaken
		}

		user := &models.User{
			Email:        input.Email,
			Username:     input.Username,
			Password:     hashedPassword,
			Role:         domain.RoleDoctor,
			FirstName:    input.FirstName,
			LastName:     input.LastName,
			Phone:        input.Phone,
			Address:      input.Address,
			IDCardNumber: input.IDCardNumber,
			IsActive:     true,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrEmailTaken
			}
			return err
		}

		doctor = &models.Doctor{
			UserID:            user.ID,
			Specialization:    input.Specialization,
			WorkingHoursStart: input.WorkingHoursStart,
			WorkingHoursEnd:   input.WorkingHoursEnd,
			ConsultationFee:   input.ConsultationFee,
			ExperienceSummary: input.ExperienceSummary,
		}
		if err := s.doctorRepo.WithTx(tx).Create(ctx, doctor); err != nil {
			return err
		}
		doctor.User = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Doctor created: %s %s (%s)", input.FirstName, input.LastName, input.Specialization)
	return doctor, nil
}

// GetByID gets a doctor with user info and holidays
func (s *DoctorService) GetByID(ctx context.Context, id uint) (*models.Doctor, error) {
	doctor, err := s.doctorRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDoctorNotFound
		}
		return nil, err
	}
	return doctor, nil
}

// List lists active doctors
func (s *DoctorService) List(ctx context.Context) ([]*models.Doctor, error) {
	return s.doctorRepo.List(ctx)
}

// Update updates doctor profile fields
func (s *DoctorService) Update(ctx context.Context, id uint, input *UpdateDoctorInput) (*models.Doctor, error) {
	doctor, err := s.doctorRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDoctorNotFound
		}
		return nil, err
	}

	if input.Specialization != nil {
		doctor.Specialization = *input.Specialization
	}
	if input.WorkingHoursStart != nil {
		doctor.WorkingHoursStart = *input.WorkingHoursStart
	}
	if input.WorkingHoursEnd != nil {
		doctor.WorkingHoursEnd = *input.WorkingHoursEnd
	}
	if input.ConsultationFee != nil {
		doctor.ConsultationFee = *input.ConsultationFee
	}
	if input.ExperienceSummary != nil {
		doctor.ExperienceSummary = *input.ExperienceSummary
	}

	if err := s.doctorRepo.Update(ctx, doctor); err != nil {
		return nil, err
	}
	return doctor, nil
}

// AddHoliday adds a blackout date to a doctor's calendar. A duplicate
// date is rejected by the unique index
func (s *DoctorService) AddHoliday(ctx context.Context, doctorID uint, dateStr, reason string) (*models.DoctorHoliday, error) {
	date, err := ParseDate(dateStr)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}

	if _, err := s.GetByID(ctx, doctorID); err != nil {
		return nil, err
	}

	holiday := &models.DoctorHoliday{
		DoctorID:    doctorID,
		HolidayDate: date,
		Reason:      reason,
	}
	if err := s.doctorRepo.AddHoliday(ctx, holiday); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrHolidayExists
		}
		return nil, err
	}
	return holiday, nil
}

// ListHolidays lists a doctor's blackout dates
func (s *DoctorService) ListHolidays(ctx context.Context, doctorID uint) ([]models.DoctorHoliday, error) {
	if _, err := s.GetByID(ctx, doctorID); err != nil {
		return nil, err
	}
	return s.doctorRepo.ListHolidays(ctx, doctorID)
}

// RemoveHoliday removes a blackout date
func (s *DoctorService) RemoveHoliday(ctx context.Context, doctorID, holidayID uint) error {
	err := s.doctorRepo.DeleteHoliday(ctx, doctorID, holidayID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrHolidayNotFound
	}
	return err
}
