package services

import (
	"context"
	"errors"

	"clinicdesk/internal/adapters/persistence/models"
	"clinicdesk/internal/adapters/persistence/repositories"
	"clinicdesk/internal/core/domain"

	"gorm.io/gorm"
)

// AccessService is the authorization engine. Every decision runs the same
// rule ladder, first match wins:
//
//  1. admin is allowed everything
//  2. the action's static role allow-list (no queries)
//  3. relational ownership for patient resources
//     (doctor -> appointment -> patient, or the patient's own profile)
//  4. self-only access for user resources
//
// Role gates come before ownership gates so the common deny case never
// touches the database.
type AccessService struct {
	doctorRepo  repositories.DoctorRepository
	patientRepo repositories.PatientRepository
	apptRepo    repositories.AppointmentRepository
}

// NewAccessService creates a new access service
func NewAccessService(
	doctorRepo repositories.DoctorRepository,
	patientRepo repositories.PatientRepository,
	apptRepo repositories.AppointmentRepository,
) *AccessService {
	return &AccessService{
		doctorRepo:  doctorRepo,
		patientRepo: patientRepo,
		apptRepo:    apptRepo,
	}
}

// RequireRoles allows the action when the principal's role is in the
// allow-list. Admin always passes.
func (s *AccessService) RequireRoles(principal *domain.Principal, action string, allowed ...domain.Role) error {
	if principal.IsAdmin() {
		return nil
	}
	for _, role := range allowed {
		if principal.Role == role {
			return nil
		}
	}
	return &domain.ForbiddenError{
		Action:        action,
		RequiredRoles: allowed,
		ActualRole:    principal.Role,
	}
}

// CanAccessPatient decides resource-scoped access to a patient record.
// Staff roles admin and receptionist see every patient; a doctor only
// patients an appointment links them to; a patient only themselves.
func (s *AccessService) CanAccessPatient(ctx context.Context, principal *domain.Principal, patientID uint) error {
	switch principal.Role {
	case domain.RoleAdmin, domain.RoleReceptionist:
		return nil

	case domain.RoleDoctor:
		doctor, err := s.doctorRepo.GetByUserID(ctx, principal.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &domain.ForbiddenError{ActualRole: principal.Role, Reason: "doctor profile not found"}
			}
			return err
		}
		linked, err := s.apptRepo.ExistsByDoctorAndPatient(ctx, doctor.ID, patientID)
		if err != nil {
			return err
		}
		if !linked {
			return &domain.ForbiddenError{ActualRole: principal.Role, Reason: "access denied to this patient"}
		}
		return nil

	case domain.RolePatient:
		patient, err := s.patientRepo.GetByUserID(ctx, principal.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &domain.ForbiddenError{ActualRole: principal.Role, Reason: "access denied to this resource"}
			}
			return err
		}
		if patient.ID != patientID {
			return &domain.ForbiddenError{ActualRole: principal.Role, Reason: "access denied to this resource"}
		}
		return nil
	}

	return &domain.ForbiddenError{ActualRole: principal.Role, Reason: "access denied"}
}

// CanAccessUser decides resource-scoped access to a user account:
// admin, or the account owner themselves.
func (s *AccessService) CanAccessUser(principal *domain.Principal, targetUserID uint) error {
	if principal.IsAdmin() || principal.UserID == targetUserID {
		return nil
	}
	return &domain.ForbiddenError{ActualRole: principal.Role, Reason: "access denied"}
}

// DoctorProfile resolves the doctor profile owned by the principal
func (s *AccessService) DoctorProfile(ctx context.Context, principal *domain.Principal) (*models.Doctor, error) {
	doctor, err := s.doctorRepo.GetByUserID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &domain.ForbiddenError{ActualRole: principal.Role, Reason: "doctor profile not found"}
		}
		return nil, err
	}
	return doctor, nil
}

// PatientProfile resolves the patient profile owned by the principal
func (s *AccessService) PatientProfile(ctx context.Context, principal *domain.Principal) (*models.Patient, error) {
	patient, err := s.patientRepo.GetByUserID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &domain.ForbiddenError{ActualRole: principal.Role, Reason: "patient profile not found"}
		}
		return nil, err
	}
	return patient, nil
}
