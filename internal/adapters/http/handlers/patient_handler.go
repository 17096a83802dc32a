package handlers

import (
	"errors"

	"clinicdesk/internal/adapters/http/middleware"
	"clinicdesk/internal/adapters/persistence/models"
	"clinicdesk/internal/adapters/persistence/repositories"
	"clinicdesk/internal/core/domain"
	"clinicdesk/internal/core/services"
	"clinicdesk/internal/pkg/pagination"
	"clinicdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PatientHandler handles patient registry endpoints
type PatientHandler struct {
	patientService *services.PatientService
	recordService  *services.MedicalRecordService
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(patientService *services.PatientService, recordService *services.MedicalRecordService) *PatientHandler {
	return &PatientHandler{
		patientService: patientService,
		recordService:  recordService,
	}
}

// Create handles patient registration (admin or receptionist)
// @Summary Create patient
// @Description Register a patient account and profile in one step
// @Tags Patients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreatePatientInput true "Patient data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /patients [post]
func (h *PatientHandler) Create(c *fiber.Ctx) error {
	var input services.CreatePatientInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.Email == "" || input.Password == "" {
		return response.BadRequest(c, "Email and password are required")
	}
	if input.FirstName == "" || input.LastName == "" {
		return response.BadRequest(c, "First name and last name are required")
	}

	patient, err := h.patientService.Create(c.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidPassword):
			return response.BadRequest(c, "Password must be at least 6 characters")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Invalid date of birth, expected YYYY-MM-DD")
		case errors.Is(err, domain.ErrEmailTaken):
			return response.Conflict(c, "Email already registered")
		default:
			return response.InternalServerError(c, "Failed to create patient")
		}
	}

	return response.Created(c, "Patient created successfully", fiber.Map{"patient": patient.ToResponse()})
}

// List handles patient listing (admin or receptionist)
// @Summary List patients
// @Description List patients with search and pagination
// @Tags Patients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search by name, email or ID card"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /patients [get]
func (h *PatientHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	patients, total, err := h.patientService.List(c.Context(), c.Query("search"), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list patients")
	}

	items := make([]*models.PatientResponse, 0, len(patients))
	for _, patient := range patients {
		items = append(items, patient.ToResponse())
	}

	return response.Success(c, "Patients retrieved successfully", pagination.NewResponse(items, params, total))
}

// Get handles patient retrieval
// @Summary Get patient
// @Description Get a patient by ID. Staff, a treating doctor, or the patient themselves.
// @Tags Patients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Patient ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /patients/{id} [get]
func (h *PatientHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid patient ID")
	}

	patient, err := h.patientService.GetByID(c.Context(), middleware.Principal(c), id)
	if err != nil {
		return h.mapError(c, err, "Failed to get patient")
	}

	return response.Success(c, "Patient retrieved successfully", fiber.Map{"patient": patient.ToResponse()})
}

// Update handles patient profile updates
// @Summary Update patient
// @Description Update a patient's contact and clinical data. Staff or the patient themselves.
// @Tags Patients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Patient ID"
// @Param body body services.UpdatePatientInput true "Update data"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /patients/{id} [put]
func (h *PatientHandler) Update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid patient ID")
	}

	var input services.UpdatePatientInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	patient, err := h.patientService.Update(c.Context(), middleware.Principal(c), id, &input)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return response.BadRequest(c, "Invalid date of birth, expected YYYY-MM-DD")
		}
		return h.mapError(c, err, "Failed to update patient")
	}

	return response.Success(c, "Patient updated successfully", fiber.Map{"patient": patient.ToResponse()})
}

// Appointments handles a patient's appointment history
// @Summary List patient appointments
// @Description List a patient's appointments. Staff, a treating doctor, or the patient themselves.
// @Tags Patients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Patient ID"
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /patients/{id}/appointments [get]
func (h *PatientHandler) Appointments(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid patient ID")
	}

	filter := repositories.AppointmentFilter{}
	if status := c.Query("status"); status != "" {
		s := models.AppointmentStatus(status)
		if !s.IsValid() {
			return response.BadRequest(c, "Invalid status filter")
		}
		filter.Status = s
	}

	appts, err := h.patientService.Appointments(c.Context(), middleware.Principal(c), id, filter)
	if err != nil {
		return h.mapError(c, err, "Failed to list appointments")
	}

	items := make([]*models.AppointmentResponse, 0, len(appts))
	for _, appt := range appts {
		items = append(items, appt.ToResponse())
	}

	return response.Success(c, "Appointments retrieved successfully", fiber.Map{"appointments": items})
}

// MedicalRecords handles a patient's medical record history
// @Summary List patient medical records
// @Description List a patient's records. Staff, a treating doctor, or the patient themselves.
// @Tags Patients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Patient ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /patients/{id}/medical-records [get]
func (h *PatientHandler) MedicalRecords(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid patient ID")
	}

	records, err := h.recordService.ListByPatient(c.Context(), middleware.Principal(c), id)
	if err != nil {
		return h.mapError(c, err, "Failed to list medical records")
	}

	return response.Success(c, "Medical records retrieved successfully", fiber.Map{"medical_records": records})
}

func (h *PatientHandler) mapError(c *fiber.Ctx, err error, fallback string) error {
	var forbidden *domain.ForbiddenError
	switch {
	case errors.As(err, &forbidden):
		return forbiddenResponse(c, forbidden)
	case errors.Is(err, domain.ErrPatientNotFound):
		return response.NotFound(c, "Patient not found")
	default:
		return response.InternalServerError(c, fallback)
	}
}
