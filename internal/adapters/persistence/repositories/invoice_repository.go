package repositories

import (
	"context"

	"clinicdesk/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// invoiceRepository implements InvoiceRepository interface
type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

// WithTx returns the repository bound to a transaction handle
func (r *invoiceRepository) WithTx(tx *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: tx}
}

// Create creates a new invoice
func (r *invoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

// GetByID gets an invoice with appointment and patient info
func (r *invoiceRepository) GetByID(ctx context.Context, id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Preload("Appointment").
		Preload("Appointment.Doctor").
		Preload("Appointment.Doctor.User").
		Preload("Patient").
		Preload("Patient.User").
		Where("id = ?", id).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// GetByAppointmentID gets the invoice derived from an appointment
func (r *invoiceRepository) GetByAppointmentID(ctx context.Context, appointmentID uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).Where("appointment_id = ?", appointmentID).First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// Update updates an invoice
func (r *invoiceRepository) Update(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Save(invoice).Error
}

// List lists invoices matching the filter, newest first
func (r *invoiceRepository) List(ctx context.Context, filter InvoiceFilter, offset, limit int) ([]*models.Invoice, int64, error) {
	var invoices []*models.Invoice
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Invoice{})
	if filter.PatientID != 0 {
		query = query.Where("patient_id = ?", filter.PatientID)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Preload("Appointment").
		Preload("Patient").
		Preload("Patient.User").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&invoices).Error; err != nil {
		return nil, 0, err
	}

	return invoices, total, nil
}
