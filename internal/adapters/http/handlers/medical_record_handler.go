package handlers

import (
	"errors"

	"clinicdesk/internal/adapters/http/middleware"
	"clinicdesk/internal/core/domain"
	"clinicdesk/internal/core/services"
	"clinicdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MedicalRecordHandler handles medical record endpoints
type MedicalRecordHandler struct {
	recordService *services.MedicalRecordService
}

// NewMedicalRecordHandler creates a new medical record handler
func NewMedicalRecordHandler(recordService *services.MedicalRecordService) *MedicalRecordHandler {
	return &MedicalRecordHandler{recordService: recordService}
}

// Create handles record filing (doctor only)
// @Summary File medical record
// @Description File a record for an appointment. Completes the appointment in the same transaction.
// @Tags MedicalRecords
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateRecordInput true "Record data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /medical-records [post]
func (h *MedicalRecordHandler) Create(c *fiber.Ctx) error {
	var input services.CreateRecordInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.AppointmentID == 0 {
		return response.BadRequest(c, "Appointment is required")
	}
	if input.Diagnosis == "" {
		return response.BadRequest(c, "Diagnosis is required")
	}

	record, err := h.recordService.File(c.Context(), middleware.Principal(c), &input)
	if err != nil {
		var forbidden *domain.ForbiddenError
		switch {
		case errors.As(err, &forbidden):
			return forbiddenResponse(c, forbidden)
		case errors.Is(err, domain.ErrAppointmentNotFound):
			return response.NotFound(c, "Appointment not found")
		case errors.Is(err, domain.ErrInvalidTransition):
			return response.Conflict(c, "Cannot file a record for a cancelled or no-show appointment")
		default:
			return response.InternalServerError(c, "Failed to file medical record")
		}
	}

	return response.Created(c, "Medical record filed successfully", fiber.Map{"medical_record": record})
}
