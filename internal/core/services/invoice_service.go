package services

import (
	"context"
	"errors"

	"clinicdesk/internal/adapters/persistence/models"
	"clinicdesk/internal/adapters/persistence/repositories"
	"clinicdesk/internal/core/domain"

	"gorm.io/gorm"
)

// InvoiceService handles invoice reads and payment status changes. Invoices
// are never created here; booking an appointment is the only thing that
// creates one.
type InvoiceService struct {
	invoiceRepo repositories.InvoiceRepository
	patientRepo repositories.PatientRepository
	access      *AccessService
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo repositories.InvoiceRepository,
	patientRepo repositories.PatientRepository,
	access *AccessService,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		patientRepo: patientRepo,
		access:      access,
	}
}

// List lists invoices. Patients only ever see their own regardless of the
// filter they pass.
func (s *InvoiceService) List(ctx context.Context, principal *domain.Principal, filter repositories.InvoiceFilter, offset, limit int) ([]*models.Invoice, int64, error) {
	if filter.PaymentStatus != "" &&
		filter.PaymentStatus != models.PaymentStatusPending &&
		filter.PaymentStatus != models.PaymentStatusPaid {
		return nil, 0, domain.ErrInvalidPaymentStatus
	}

	if principal.Role == domain.RolePatient {
		patient, err := s.access.PatientProfile(ctx, principal)
		if err != nil {
			return nil, 0, err
		}
		filter.PatientID = patient.ID
	}

	return s.invoiceRepo.List(ctx, filter, offset, limit)
}

// GetByID gets an invoice, gated by the patient-resource access rules
func (s *InvoiceService) GetByID(ctx context.Context, principal *domain.Principal, id uint) (*models.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, err
	}

	if err := s.access.CanAccessPatient(ctx, principal, invoice.PatientID); err != nil {
		return nil, err
	}
	return invoice, nil
}

// UpdatePaymentStatus marks an invoice pending or paid (front desk only,
// enforced at the route)
func (s *InvoiceService) UpdatePaymentStatus(ctx context.Context, id uint, status string) (*models.Invoice, error) {
	if status != models.PaymentStatusPending && status != models.PaymentStatusPaid {
		return nil, domain.ErrInvalidPaymentStatus
	}

	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, err
	}

	invoice.PaymentStatus = status
	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}
