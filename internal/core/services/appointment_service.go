package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"clinicdesk/internal/adapters/persistence/models"
	"clinicdesk/internal/adapters/persistence/repositories"
	"clinicdesk/internal/core/domain"

	"gorm.io/gorm"
)

// AppointmentService runs the booking admission protocol and the
// appointment lifecycle state machine. All multi-row work happens inside
// one database transaction on the injected handle.
type AppointmentService struct {
	db          *gorm.DB
	apptRepo    repositories.AppointmentRepository
	doctorRepo  repositories.DoctorRepository
	patientRepo repositories.PatientRepository
	invoiceRepo repositories.InvoiceRepository
	access      *AccessService
}

// NewAppointmentService creates a new appointment service
func NewAppointmentService(
	db *gorm.DB,
	apptRepo repositories.AppointmentRepository,
	doctorRepo repositories.DoctorRepository,
	patientRepo repositories.PatientRepository,
	invoiceRepo repositories.InvoiceRepository,
	access *AccessService,
) *AppointmentService {
	return &AppointmentService{
		db:          db,
		apptRepo:    apptRepo,
		doctorRepo:  doctorRepo,
		patientRepo: patientRepo,
		invoiceRepo: invoiceRepo,
		access:      access,
	}
}

// BookInput represents a booking request
type BookInput struct {
	DoctorID        uint    `json:"doctor_id"`
	PatientID       uint    `json:"patient_id"`
	Date            string  `json:"appointment_date"`
	Time            string  `json:"appointment_time"`
	ConsultationFee float64 `json:"consultation_fee"`
	Notes           string  `json:"notes"`
}

// UpdateAppointmentInput represents an appointment update request.
// Nil fields are left unchanged.
type UpdateAppointmentInput struct {
	Date   *string                   `json:"appointment_date"`
	Time   *string                   `json:"appointment_time"`
	Status *models.AppointmentStatus `json:"status"`
	Notes  *string                   `json:"notes"`
}

// Book admits a booking request. Slot conflict check, holiday blackout
// check, the appointment insert and the derived invoice insert share one
// transaction: either the appointment/invoice pair exists afterwards or
// nothing does. If two requests race for the same slot the unique slot_key
// index lets exactly one insert through; the loser gets ErrSlotTaken.
func (s *AppointmentService) Book(ctx context.Context, input *BookInput, createdBy uint) (*models.Appointment, error) {
	date, err := ParseDate(input.Date)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	timeOfDay, err := ParseTimeOfDay(input.Time)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}

	var appt *models.Appointment

	err = s.db.Transaction(func(tx *gorm.DB) error {
		doctorRepo := s.doctorRepo.WithTx(tx)
		apptRepo := s.apptRepo.WithTx(tx)

		doctor, err := doctorRepo.GetByID(ctx, input.DoctorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrDoctorNotFound
			}
			return err
		}

		if _, err := s.patientRepo.WithTx(tx).GetByID(ctx, input.PatientID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrPatientNotFound
			}
			return err
		}

		onHoliday, err := doctorRepo.IsHoliday(ctx, doctor.ID, date)
		if err != nil {
			return err
		}
		if onHoliday {
			return domain.ErrDoctorOnHoliday
		}

		occupied, err := apptRepo.SlotOccupied(ctx, doctor.ID, date, timeOfDay)
		if err != nil {
			return err
		}
		if occupied {
			return domain.ErrSlotTaken
		}

		fee := input.ConsultationFee
		if fee <= 0 {
			fee = doctor.ConsultationFee
		}

		slotKey := models.SlotKeyFor(doctor.ID, date, timeOfDay)
		appt = &models.Appointment{
			DoctorID:        doctor.ID,
			PatientID:       input.PatientID,
			AppointmentDate: date,
			AppointmentTime: timeOfDay,
			Status:          models.ApptStatusScheduled,
			SlotKey:         &slotKey,
			ConsultationFee: fee,
			Notes:           input.Notes,
			CreatedBy:       createdBy,
		}

		if err := apptRepo.Create(ctx, appt); err != nil {
			// The racing loser lands here: its pre-check saw a free slot
			// but the unique index caught the duplicate.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrSlotTaken
			}
			return err
		}

		invoice := &models.Invoice{
			AppointmentID: appt.ID,
			PatientID:     input.PatientID,
			InvoiceNumber: fmt.Sprintf("INV-%d-%d", time.Now().UnixMilli(), appt.ID),
			AmountDue:     fee,
			PaymentStatus: models.PaymentStatusPending,
		}
		return s.invoiceRepo.WithTx(tx).Create(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Appointment %d booked: doctor %d, %s %s", appt.ID, appt.DoctorID, input.Date, timeOfDay)
	return s.apptRepo.GetByID(ctx, appt.ID)
}

// Update applies a status transition and/or reschedule.
//
// The state machine: scheduled may move to completed, cancelled or no_show;
// those three are terminal. Cancelling releases the slot. Rescheduling is
// only valid while scheduled and re-runs the admission checks in the same
// transaction so the slot invariant holds across the move. A doctor may
// only touch appointments assigned to them; staff may touch any.
func (s *AppointmentService) Update(ctx context.Context, principal *domain.Principal, id uint, input *UpdateAppointmentInput) (*models.Appointment, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		apptRepo := s.apptRepo.WithTx(tx)

		appt, err := apptRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrAppointmentNotFound
			}
			return err
		}

		if principal.Role == domain.RoleDoctor {
			doctor, err := s.access.DoctorProfile(ctx, principal)
			if err != nil {
				return err
			}
			if appt.DoctorID != doctor.ID {
				return &domain.ForbiddenError{
					ActualRole: principal.Role,
					Reason:     "appointment is assigned to another doctor",
				}
			}
		}

		if input.Date != nil || input.Time != nil {
			if err := s.reschedule(ctx, tx, appt, input); err != nil {
				return err
			}
		}

		if input.Status != nil {
			if err := transition(appt, *input.Status); err != nil {
				return err
			}
		}

		if input.Notes != nil {
			appt.Notes = *input.Notes
		}

		if err := apptRepo.Update(ctx, appt); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrSlotTaken
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.apptRepo.GetByID(ctx, id)
}

// transition validates and applies a status change in place
func transition(appt *models.Appointment, target models.AppointmentStatus) error {
	if !target.IsValid() {
		return domain.ErrInvalidStatus
	}
	if target == appt.Status {
		return nil
	}
	if appt.Status.IsTerminal() {
		return domain.ErrInvalidTransition
	}
	appt.Status = target
	if target == models.ApptStatusCancelled {
		appt.SlotKey = nil
	}
	return nil
}

// reschedule moves an appointment to a new slot after re-running the
// holiday and conflict checks against the target slot
func (s *AppointmentService) reschedule(ctx context.Context, tx *gorm.DB, appt *models.Appointment, input *UpdateAppointmentInput) error {
	if appt.Status.IsTerminal() {
		return domain.ErrInvalidTransition
	}

	date := appt.AppointmentDate
	timeOfDay := appt.AppointmentTime
	var err error

	if input.Date != nil {
		if date, err = ParseDate(*input.Date); err != nil {
			return domain.ErrInvalidInput
		}
	}
	if input.Time != nil {
		if timeOfDay, err = ParseTimeOfDay(*input.Time); err != nil {
			return domain.ErrInvalidInput
		}
	}

	if date.Format("2006-01-02") == appt.AppointmentDate.Format("2006-01-02") && timeOfDay == appt.AppointmentTime {
		return nil
	}

	doctorRepo := s.doctorRepo.WithTx(tx)
	onHoliday, err := doctorRepo.IsHoliday(ctx, appt.DoctorID, date)
	if err != nil {
		return err
	}
	if onHoliday {
		return domain.ErrDoctorOnHoliday
	}

	occupied, err := s.apptRepo.WithTx(tx).SlotOccupied(ctx, appt.DoctorID, date, timeOfDay)
	if err != nil {
		return err
	}
	if occupied {
		return domain.ErrSlotTaken
	}

	slotKey := models.SlotKeyFor(appt.DoctorID, date, timeOfDay)
	appt.AppointmentDate = date
	appt.AppointmentTime = timeOfDay
	appt.SlotKey = &slotKey
	return nil
}

// GetByID gets an appointment
func (s *AppointmentService) GetByID(ctx context.Context, id uint) (*models.Appointment, error) {
	appt, err := s.apptRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAppointmentNotFound
		}
		return nil, err
	}
	return appt, nil
}

// ListInput narrows an appointment listing request
type ListInput struct {
	Date      string
	DoctorID  uint
	PatientID uint
	Status    models.AppointmentStatus
}

// List lists appointments visible to the principal. Doctors implicitly see
// only their own calendar and patients only their own bookings; staff may
// filter freely.
func (s *AppointmentService) List(ctx context.Context, principal *domain.Principal, input ListInput, offset, limit int) ([]*models.Appointment, int64, error) {
	filter := repositories.AppointmentFilter{Status: input.Status}

	if input.Date != "" {
		date, err := ParseDate(input.Date)
		if err != nil {
			return nil, 0, domain.ErrInvalidInput
		}
		filter.Date = &date
	}

	switch principal.Role {
	case domain.RoleDoctor:
		doctor, err := s.access.DoctorProfile(ctx, principal)
		if err != nil {
			return nil, 0, err
		}
		filter.DoctorID = doctor.ID
		filter.PatientID = input.PatientID
	case domain.RolePatient:
		patient, err := s.access.PatientProfile(ctx, principal)
		if err != nil {
			return nil, 0, err
		}
		filter.PatientID = patient.ID
		filter.DoctorID = input.DoctorID
	default:
		filter.DoctorID = input.DoctorID
		filter.PatientID = input.PatientID
	}

	return s.apptRepo.List(ctx, filter, offset, limit)
}

// ParseDate parses a calendar date in 2006-01-02 form, normalized to
// midnight UTC so date equality is exact across the codebase
func ParseDate(value string) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", value, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return d, nil
}

// ParseTimeOfDay parses and canonicalizes an HH:MM time of day
// ("9:00" and "09:00" name the same slot)
func ParseTimeOfDay(value string) (string, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		t, err = time.Parse("3:04", value)
		if err != nil {
			return "", err
		}
	}
	return t.Format("15:04"), nil
}
