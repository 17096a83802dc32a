package handlers

import (
	"errors"

	"clinicdesk/internal/adapters/persistence/models"
	"clinicdesk/internal/core/domain"
	"clinicdesk/internal/core/services"
	"clinicdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DoctorHandler handles doctor directory and holiday endpoints
type DoctorHandler struct {
	doctorService *services.DoctorService
}

// NewDoctorHandler creates a new doctor handler
func NewDoctorHandler(doctorService *services.DoctorService) *DoctorHandler {
	return &DoctorHandler{doctorService: doctorService}
}

// HolidayRequest represents a holiday creation request body
type HolidayRequest struct {
	HolidayDate string `json:"holiday_date"`
	Reason      string `json:"reason"`
}

// Create handles doctor onboarding (admin only)
// @Summary Create doctor
// @Description Create a doctor account and profile in one step
// @Tags Doctors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateDoctorInput true "Doctor data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /doctors [post]
func (h *DoctorHandler) Create(c *fiber.Ctx) error {
	var input services.CreateDoctorInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.Email == "" || input.Password == "" {
		return response.BadRequest(c, "Email and password are required")
	}
	if input.FirstName == "" || input.LastName == "" {
		return response.BadRequest(c, "First name and last name are required")
	}
	if input.Specialization == "" {
		return response.BadRequest(c, "Specialization is required")
	}
	if input.ConsultationFee < 0 {
		return response.BadRequest(c, "Consultation fee cannot be negative")
	}

	doctor, err := h.doctorService.Create(c.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidPassword):
			return response.BadRequest(c, "Password must be at least 6 characters")
		case errors.Is(err, domain.ErrEmailTaken):
			return response.Conflict(c, "Email already registered")
		default:
			return response.InternalServerError(c, "Failed to create doctor")
		}
	}

	return response.Created(c, "Doctor created successfully", fiber.Map{"doctor": doctor.ToResponse()})
}

// List handles the doctor directory listing
// @Summary List doctors
// @Description List active doctors with their specializations and hours
// @Tags Doctors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /doctors [get]
func (h *DoctorHandler) List(c *fiber.Ctx) error {
	doctors, err := h.doctorService.List(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list doctors")
	}

	items := make([]*models.DoctorResponse, 0, len(doctors))
	for _, doctor := range doctors {
		items = append(items, doctor.ToResponse())
	}

	return response.Success(c, "Doctors retrieved successfully", fiber.Map{"doctors": items})
}

// Get handles doctor retrieval
// @Summary Get doctor
// @Description Get a doctor by ID
// @Tags Doctors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Doctor ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /doctors/{id} [get]
func (h *DoctorHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid doctor ID")
	}

	doctor, err := h.doctorService.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrDoctorNotFound) {
			return response.NotFound(c, "Doctor not found")
		}
		return response.InternalServerError(c, "Failed to get doctor")
	}

	return response.Success(c, "Doctor retrieved successfully", fiber.Map{"doctor": doctor.ToResponse()})
}

// Update handles doctor profile updates (admin only)
// @Summary Update doctor
// @Description Update a doctor's professional profile
// @Tags Doctors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Doctor ID"
// @Param body body services.UpdateDoctorInput true "Update data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /doctors/{id} [put]
func (h *DoctorHandler) Update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid doctor ID")
	}

	var input services.UpdateDoctorInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.ConsultationFee != nil && *input.ConsultationFee < 0 {
		return response.BadRequest(c, "Consultation fee cannot be negative")
	}

	doctor, err := h.doctorService.Update(c.Context(), id, &input)
	if err != nil {
		if errors.Is(err, domain.ErrDoctorNotFound) {
			return response.NotFound(c, "Doctor not found")
		}
		return response.InternalServerError(c, "Failed to update doctor")
	}

	return response.Success(c, "Doctor updated successfully", fiber.Map{"doctor": doctor.ToResponse()})
}

// ListHolidays handles holiday listing for a doctor
// @Summary List doctor holidays
// @Description List a doctor's blackout dates
// @Tags Doctors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Doctor ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /doctors/{id}/holidays [get]
func (h *DoctorHandler) ListHolidays(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid doctor ID")
	}

	holidays, err := h.doctorService.ListHolidays(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrDoctorNotFound) {
			return response.NotFound(c, "Doctor not found")
		}
		return response.InternalServerError(c, "Failed to list holidays")
	}

	return response.Success(c, "Holidays retrieved successfully", fiber.Map{"holidays": holidays})
}

// AddHoliday handles holiday creation (admin or receptionist)
// @Summary Add doctor holiday
// @Description Add a blackout date. Duplicate dates are rejected.
// @Tags Doctors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Doctor ID"
// @Param body body HolidayRequest true "Holiday data"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /doctors/{id}/holidays [post]
func (h *DoctorHandler) AddHoliday(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid doctor ID")
	}

	var req HolidayRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.HolidayDate == "" {
		return response.BadRequest(c, "Holiday date is required")
	}

	holiday, err := h.doctorService.AddHoliday(c.Context(), id, req.HolidayDate, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Invalid holiday date, expected YYYY-MM-DD")
		case errors.Is(err, domain.ErrDoctorNotFound):
			return response.NotFound(c, "Doctor not found")
		case errors.Is(err, domain.ErrHolidayExists):
			return response.Conflict(c, "Holiday already exists for this date")
		default:
			return response.InternalServerError(c, "Failed to add holiday")
		}
	}

	return response.Created(c, "Holiday added successfully", fiber.Map{"holiday": holiday})
}

// RemoveHoliday handles holiday removal (admin or receptionist)
// @Summary Remove doctor holiday
// @Description Remove a blackout date
// @Tags Doctors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Doctor ID"
// @Param holidayId path int true "Holiday ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /doctors/{id}/holidays/{holidayId} [delete]
func (h *DoctorHandler) RemoveHoliday(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid doctor ID")
	}
	holidayID, err := parseIDParam(c, "holidayId")
	if err != nil {
		return response.BadRequest(c, "Invalid holiday ID")
	}

	if err := h.doctorService.RemoveHoliday(c.Context(), id, holidayID); err != nil {
		if errors.Is(err, domain.ErrHolidayNotFound) {
			return response.NotFound(c, "Holiday not found")
		}
		return response.InternalServerError(c, "Failed to remove holiday")
	}

	return response.Success(c, "Holiday removed successfully", nil)
}
