package handlers

import (
	"errors"

	"clinicdesk/internal/adapters/http/middleware"
	"clinicdesk/internal/adapters/persistence/repositories"
	"clinicdesk/internal/core/domain"
	"clinicdesk/internal/core/services"
	"clinicdesk/internal/pkg/pagination"
	"clinicdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// InvoiceHandler handles billing endpoints
type InvoiceHandler struct {
	invoiceService *services.InvoiceService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// PaymentStatusRequest represents a payment status update request body
type PaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status"`
}

// List handles invoice listing
// @Summary List invoices
// @Description List invoices. Patients only ever see their own.
// @Tags Invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param patient_id query int false "Filter by patient"
// @Param payment_status query string false "Filter by payment status"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /invoices [get]
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	filter := repositories.InvoiceFilter{
		PatientID:     uint(c.QueryInt("patient_id")),
		PaymentStatus: c.Query("payment_status"),
	}

	invoices, total, err := h.invoiceService.List(c.Context(), middleware.Principal(c), filter, params.Offset, params.Limit)
	if err != nil {
		var forbidden *domain.ForbiddenError
		switch {
		case errors.As(err, &forbidden):
			return forbiddenResponse(c, forbidden)
		case errors.Is(err, domain.ErrInvalidPaymentStatus):
			return response.BadRequest(c, "Invalid payment status filter")
		default:
			return response.InternalServerError(c, "Failed to list invoices")
		}
	}

	return response.Success(c, "Invoices retrieved successfully", pagination.NewResponse(invoices, params, total))
}

// Get handles invoice retrieval
// @Summary Get invoice
// @Description Get an invoice by ID. Access follows the patient-resource rules.
// @Tags Invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Invoice ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid invoice ID")
	}

	invoice, err := h.invoiceService.GetByID(c.Context(), middleware.Principal(c), id)
	if err != nil {
		var forbidden *domain.ForbiddenError
		switch {
		case errors.As(err, &forbidden):
			return forbiddenResponse(c, forbidden)
		case errors.Is(err, domain.ErrInvoiceNotFound):
			return response.NotFound(c, "Invoice not found")
		default:
			return response.InternalServerError(c, "Failed to get invoice")
		}
	}

	return response.Success(c, "Invoice retrieved successfully", fiber.Map{"invoice": invoice})
}

// UpdatePaymentStatus handles payment status updates (admin or receptionist)
// @Summary Update invoice payment status
// @Description Mark an invoice pending or paid
// @Tags Invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Invoice ID"
// @Param body body PaymentStatusRequest true "Payment status"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /invoices/{id}/payment-status [patch]
func (h *InvoiceHandler) UpdatePaymentStatus(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid invoice ID")
	}

	var req PaymentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.PaymentStatus == "" {
		return response.BadRequest(c, "Payment status is required")
	}

	invoice, err := h.invoiceService.UpdatePaymentStatus(c.Context(), id, req.PaymentStatus)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidPaymentStatus):
			return response.BadRequest(c, "Payment status must be pending or paid")
		case errors.Is(err, domain.ErrInvoiceNotFound):
			return response.NotFound(c, "Invoice not found")
		default:
			return response.InternalServerError(c, "Failed to update invoice")
		}
	}

	return response.Success(c, "Invoice updated successfully", fiber.Map{"invoice": invoice})
}
