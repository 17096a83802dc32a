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

// UserService handles admin-side account management
type UserService struct {
	db               *gorm.DB
	userRepo         repositories.UserRepository
	doctorRepo       repositories.DoctorRepository
	patientRepo      repositories.PatientRepository
	refreshTokenRepo repositories.RefreshTokenRepository
}

// NewUserService creates a new user service
func NewUserService(
	db *gorm.DB,
	userRepo repositories.UserRepository,
	doctorRepo repositories.DoctorRepository,
	patientRepo repositories.PatientRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
) *UserService {
	return &UserService{
		db:               db,
		userRepo:         userRepo,
		doctorRepo:       doctorRepo,
		patientRepo:      patientRepo,
		refreshTokenRepo: refreshTokenRepo,
	}
}

// UpdateUserInput represents account update input
type UpdateUserInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	Username  *string `json:"username"`
}

// List lists users with optional role and search filters
func (s *UserService) List(ctx context.Context, role, search string, offset, limit int) ([]*models.User, int64, error) {
	if role != "" && !domain.Role(role).IsValid() {
		return nil, 0, domain.ErrInvalidRole
	}
	return s.userRepo.List(ctx, role, search, offset, limit)
}

// GetByID gets a user with the role profile attached when one exists
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	resp := user.ToResponse()
	switch user.Role {
	case domain.RoleDoctor:
		if doctor, err := s.doctorRepo.GetByUserID(ctx, user.ID); err == nil {
			resp.Doctor = doctor.ToResponse()
		}
	case domain.RolePatient:
		if patient, err := s.patientRepo.GetByUserID(ctx, user.ID); err == nil {
			resp.Patient = patient.ToResponse()
		}
	}
	return resp, nil
}

// Update updates a user's account fields
func (s *UserService) Update(ctx context.Context, id uint, input *UpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
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
	if input.Username != nil {
		user.Username = *input.Username
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetActive activates or deactivates an account. Deactivation also revokes
// every outstanding refresh token so the session dies with the account.
func (s *UserService) SetActive(ctx context.Context, id uint, active bool) (*models.User, error) {
	var user *models.User

	err := s.db.Transaction(func(tx *gorm.DB) error {
		userRepo := s.userRepo.WithTx(tx)

		var err error
		user, err = userRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrUserNotFound
			}
			return err
		}

		user.IsActive = active
		if err := userRepo.Update(ctx, user); err != nil {
			return err
		}

		if !active {
			return s.refreshTokenRepo.WithTx(tx).RevokeAllByUserID(ctx, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("User %d active=%t", id, active)
	return user, nil
}

// Delete soft-deletes a user and removes the role profile in the same
// transaction. Appointments, invoices and medical records stay: clinical
// history outlives the account.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		userRepo := s.userRepo.WithTx(tx)

		user, err := userRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrUserNotFound
			}
			return err
		}

		switch user.Role {
		case domain.RoleDoctor:
			doctorRepo := s.doctorRepo.WithTx(tx)
			if doctor, err := doctorRepo.GetByUserID(ctx, user.ID); err == nil {
				if err := doctorRepo.Delete(ctx, doctor.ID); err != nil {
					return err
				}
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		case domain.RolePatient:
			patientRepo := s.patientRepo.WithTx(tx)
			if patient, err := patientRepo.GetByUserID(ctx, user.ID); err == nil {
				if err := patientRepo.Delete(ctx, patient.ID); err != nil {
					return err
				}
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		if err := s.refreshTokenRepo.WithTx(tx).RevokeAllByUserID(ctx, user.ID); err != nil {
			return err
		}
		return userRepo.Delete(ctx, user.ID)
	})
}
