package services

import (
	"context"
	"errors"
	"log"
	"time"

	"clinicdesk/internal/adapters/persistence/models"
	"clinicdesk/internal/adapters/persistence/repositories"
	"clinicdesk/internal/core/domain"
	"clinicdesk/internal/pkg/password"

	"gorm.io/gorm"
)

// PatientService handles patient onboarding, profile management and the
// patient-scoped listings (appointments, medical records)
type PatientService struct {
	db          *gorm.DB
	patientRepo repositories.PatientRepository
	userRepo    repositories.UserRepository
	apptRepo    repositories.AppointmentRepository
	access      *AccessService
}

// NewPatientService creates a new patient service
func NewPatientService(
	db *gorm.DB,
	patientRepo repositories.PatientRepository,
	userRepo repositories.UserRepository,
	apptRepo repositories.AppointmentRepository,
	access *AccessService,
) *PatientService {
	return &PatientService{
		db:          db,
		patientRepo: patientRepo,
		userRepo:    userRepo,
		apptRepo:    apptRepo,
		access:      access,
	}
}

// CreatePatientInput represents patient onboarding input
type CreatePatientInput struct {
	Email                 string `json:"email"`
	Username              string `json:"username"`
	Password              string `json:"password"`
	FirstName             string `json:"first_name"`
	LastName              string `json:"last_name"`
	Phone                 string `json:"phone"`
	Address               string `json:"address"`
	IDCardNumber          string `json:"id_card_number"`
	DateOfBirth           string `json:"date_of_birth"`
	Gender                string `json:"gender"`
	EmergencyContactName  string `json:"emergency_contact_name"`
	EmergencyContactPhone string `json:"emergency_contact_phone"`
	MedicalHistory        string `json:"medical_history"`
	Allergies             string `json:"allergies"`
}

// UpdatePatientInput represents patient update input.
// Nil fields are left unchanged; name/contact fields live on the user row.
type UpdatePatientInput struct {
	FirstName             *string `json:"first_name"`
	LastName              *string `json:"last_name"`
	Phone                 *string `json:"phone"`
	Address               *string `json:"address"`
	DateOfBirth           *string `json:"date_of_birth"`
	Gender                *string `json:"gender"`
	EmergencyContactName  *string `json:"emergency_contact_name"`
	EmergencyContactPhone *string `json:"emergency_contact_phone"`
	MedicalHistory        *string `json:"medical_history"`
	Allergies             *string `json:"allergies"`
}

// Create onboards a patient: user account plus patient profile in one
// transaction
func (s *PatientService) Create(ctx context.Context, input *CreatePatientInput) (*models.Patient, error) {
	if !password.Validate(input.Password) {
		return nil, domain.ErrInvalidPassword
	}

	var dateOfBirth *time.Time
	if input.DateOfBirth != "" {
		dob, err := ParseDate(input.DateOfBirth)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		dateOfBirth = &dob
	}

	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	var patient *models.Patient

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
			Role:         domain.RolePatient,
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

		patient = &models.Patient{
			UserID:                user.ID,
			DateOfBirth:           dateOfBirth,
			Gender:                input.Gender,
			EmergencyContactName:  input.EmergencyContactName,
			EmergencyContactPhone: input.EmergencyContactPhone,
			MedicalHistory:        input.MedicalHistory,
			Allergies:             input.Allergies,
		}
		if err := s.patientRepo.WithTx(tx).Create(ctx, patient); err != nil {
			return err
		}
		patient.User = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Patient created: %s %s", input.FirstName, input.LastName)
	return patient, nil
}

// GetByID gets a patient, gated by the patient-resource access rules
func (s *PatientService) GetByID(ctx context.Context, principal *domain.Principal, id uint) (*models.Patient, error) {
	if err := s.access.CanAccessPatient(ctx, principal, id); err != nil {
		return nil, err
	}

	patient, err := s.patientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPatientNotFound
		}
		return nil, err
	}
	return patient, nil
}

// List lists patients with search and pagination (staff only, enforced at
// the route)
func (s *PatientService) List(ctx context.Context, search string, offset, limit int) ([]*models.Patient, int64, error) {
	return s.patientRepo.List(ctx, search, offset, limit)
}

// Update updates a patient's user row and profile row in one transaction
func (s *PatientService) Update(ctx context.Context, principal *domain.Principal, id uint, input *UpdatePatientInput) (*models.Patient, error) {
	if err := s.access.CanAccessPatient(ctx, principal, id); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		patientRepo := s.patientRepo.WithTx(tx)

		patient, err := patientRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrPatientNotFound
			}
			return err
		}

		userRepo := s.userRepo.WithTx(tx)
		user, err := userRepo.GetByID(ctx, patient.UserID)
		if err != nil {
			return err
		}

		if input.FirstName != nil {
			user.FirstName = *input.FirstName
		}
		if input.LastName != nil {
			user.LastName = *input.LastName
		}
		if input.Phone != nil {
			user.Phone = *input.Phone
		}
		if input.Address != nil {
			user.Address = *input.Address
		}
		if err := userRepo.Update(ctx, user); err != nil {
			return err
		}

		if input.DateOfBirth != nil {
			dob, err := ParseDate(*input.DateOfBirth)
			if err != nil {
				return domain.ErrInvalidInput
			}
			patient.DateOfBirth = &dob
		}
		if input.Gender != nil {
			patient.Gender = *input.Gender
		}
		if input.EmergencyContactName != nil {
			patient.EmergencyContactName = *input.EmergencyContactName
		}
		if input.EmergencyContactPhone != nil {
			patient.EmergencyContactPhone = *input.EmergencyContactPhone
		}
		if input.MedicalHistory != nil {
			patient.MedicalHistory = *input.MedicalHistory
		}
		if input.Allergies != nil {
			patient.Allergies = *input.Allergies
		}
		return patientRepo.Update(ctx, patient)
	})
	if err != nil {
		return nil, err
	}

	return s.patientRepo.GetByID(ctx, id)
}

// Appointments lists a patient's appointments, gated by access rules
func (s *PatientService) Appointments(ctx context.Context, principal *domain.Principal, patientID uint, filter repositories.AppointmentFilter) ([]*models.Appointment, error) {
	if err := s.access.CanAccessPatient(ctx, principal, patientID); err != nil {
		return nil, err
	}
	return s.apptRepo.ListByPatient(ctx, patientID, filter)
}
