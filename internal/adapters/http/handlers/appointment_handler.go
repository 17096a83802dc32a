package handlers

import (
	"errors"

	"clinicdesk/internal/adapters/http/middleware"
	"clinicdesk/internal/adapters/persistence/models"
	"clinicdesk/internal/core/domain"
	"clinicdesk/internal/core/services"
	"clinicdesk/internal/pkg/pagination"
	"clinicdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AppointmentHandler handles appointment booking and lifecycle endpoints
type AppointmentHandler struct {
	apptService *services.AppointmentService
	access      *services.AccessService
}

// NewAppointmentHandler creates a new appointment handler
func NewAppointmentHandler(apptService *services.AppointmentService, access *services.AccessService) *AppointmentHandler {
	return &AppointmentHandler{
		apptService: apptService,
		access:      access,
	}
}

// Book handles appointment booking (admin or receptionist)
// @Summary Book appointment
// @Description Book a slot and derive its invoice atomically
// @Tags Appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.BookInput true "Booking data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /appointments [post]
func (h *AppointmentHandler) Book(c *fiber.Ctx) error {
	var input services.BookInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.DoctorID == 0 || input.PatientID == 0 {
		return response.BadRequest(c, "Doctor and patient are required")
	}
	if input.Date == "" || input.Time == "" {
		return response.BadRequest(c, "Appointment date and time are required")
	}

	principal := middleware.Principal(c)

	appt, err := h.apptService.Book(c.Context(), &input, principal.UserID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Invalid date or time format")
		case errors.Is(err, domain.ErrDoctorNotFound):
			return response.NotFound(c, "Doctor not found")
		case errors.Is(err, domain.ErrPatientNotFound):
			return response.NotFound(c, "Patient not found")
		case errors.Is(err, domain.ErrDoctorOnHoliday):
			return response.Conflict(c, "Doctor is on holiday on this date")
		case errors.Is(err, domain.ErrSlotTaken):
			return response.Conflict(c, "Doctor is not available at this time slot")
		default:
			return response.InternalServerError(c, "Failed to book appointment")
		}
	}

	return response.Created(c, "Appointment booked successfully", fiber.Map{"appointment": appt.ToResponse()})
}

// List handles appointment listing scoped to the caller's role
// @Summary List appointments
// @Description List appointments. Doctors see only their calendar, patients only their bookings.
// @Tags Appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param date query string false "Filter by date (YYYY-MM-DD)"
// @Param doctor_id query int false "Filter by doctor"
// @Param patient_id query int false "Filter by patient"
// @Param status query string false "Filter by status"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /appointments [get]
func (h *AppointmentHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	input := services.ListInput{
		Date:      c.Query("date"),
		DoctorID:  uint(c.QueryInt("doctor_id")),
		PatientID: uint(c.QueryInt("patient_id")),
	}
	if status := c.Query("status"); status != "" {
		s := models.AppointmentStatus(status)
		if !s.IsValid() {
			return response.BadRequest(c, "Invalid status filter")
		}
		input.Status = s
	}

	appts, total, err := h.apptService.List(c.Context(), middleware.Principal(c), input, params.Offset, params.Limit)
	if err != nil {
		var forbidden *domain.ForbiddenError
		switch {
		case errors.As(err, &forbidden):
			return forbiddenResponse(c, forbidden)
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Invalid date filter, expected YYYY-MM-DD")
		default:
			return response.InternalServerError(c, "Failed to list appointments")
		}
	}

	items := make([]*models.AppointmentResponse, 0, len(appts))
	for _, appt := range appts {
		items = append(items, appt.ToResponse())
	}

	return response.Success(c, "Appointments retrieved successfully", pagination.NewResponse(items, params, total))
}

// Get handles appointment retrieval
// @Summary Get appointment
// @Description Get an appointment by ID. Access follows the patient-resource rules.
// @Tags Appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /appointments/{id} [get]
func (h *AppointmentHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid appointment ID")
	}

	appt, err := h.apptService.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrAppointmentNotFound) {
			return response.NotFound(c, "Appointment not found")
		}
		return response.InternalServerError(c, "Failed to get appointment")
	}

	if err := h.access.CanAccessPatient(c.Context(), middleware.Principal(c), appt.PatientID); err != nil {
		var forbidden *domain.ForbiddenError
		if errors.As(err, &forbidden) {
			return forbiddenResponse(c, forbidden)
		}
		return response.Forbidden(c, "Access denied")
	}

	return response.Success(c, "Appointment retrieved successfully", fiber.Map{"appointment": appt.ToResponse()})
}

// Update handles reschedule, status transitions and note edits
// (admin, receptionist, or the assigned doctor)
// @Summary Update appointment
// @Description Reschedule, change status or edit notes
// @Tags Appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Param body body services.UpdateAppointmentInput true "Update data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /appointments/{id} [put]
func (h *AppointmentHandler) Update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid appointment ID")
	}

	var input services.UpdateAppointmentInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	appt, err := h.apptService.Update(c.Context(), middleware.Principal(c), id, &input)
	if err != nil {
		var forbidden *domain.ForbiddenError
		switch {
		case errors.As(err, &forbidden):
			return forbiddenResponse(c, forbidden)
		case errors.Is(err, domain.ErrAppointmentNotFound):
			return response.NotFound(c, "Appointment not found")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Invalid date or time format")
		case errors.Is(err, domain.ErrInvalidStatus):
			return response.BadRequest(c, "Invalid appointment status")
		case errors.Is(err, domain.ErrInvalidTransition):
			return response.Conflict(c, "Appointment is in a terminal state")
		case errors.Is(err, domain.ErrDoctorOnHoliday):
			return response.Conflict(c, "Doctor is on holiday on this date")
		case errors.Is(err, domain.ErrSlotTaken):
			return response.Conflict(c, "Doctor is not available at this time slot")
		default:
			return response.InternalServerError(c, "Failed to update appointment")
		}
	}

	return response.Success(c, "Appointment updated successfully", fiber.Map{"appointment": appt.ToResponse()})
}
