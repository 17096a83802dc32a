package models

import (
	"fmt"
	"time"

	"clinicdesk/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Users & Auth
// ============================================================

// User represents users table
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Username     string         `gorm:"size:50" json:"username"`
	Password     string         `gorm:"size:255;not null" json:"-"`
	Role         domain.Role    `gorm:"size:20;not null" json:"role"`
	FirstName    string         `gorm:"size:100;not null" json:"first_name"`
	LastName     string         `gorm:"size:100;not null" json:"last_name"`
	Phone        string         `gorm:"size:20" json:"phone"`
	Address      string         `gorm:"type:text" json:"address"`
	IDCardNumber string         `gorm:"size:50" json:"id_card_number"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// ToPrincipal builds the authorization-facing view of the user
func (u *User) ToPrincipal() *domain.Principal {
	return &domain.Principal{
		UserID:   u.ID,
		Email:    u.Email,
		Role:     u.Role,
		IsActive: u.IsActive,
	}
}

// UserResponse DTO
type UserResponse struct {
	ID           uint             `json:"id"`
	Email        string           `json:"email"`
	Username     string           `json:"username,omitempty"`
	Role         domain.Role      `json:"role"`
	FirstName    string           `json:"first_name"`
	LastName     string           `json:"last_name"`
	Phone        string           `json:"phone,omitempty"`
	Address      string           `json:"address,omitempty"`
	IDCardNumber string           `json:"id_card_number,omitempty"`
	IsActive     bool             `json:"is_active"`
	CreatedAt    time.Time        `json:"created_at"`
	Doctor       *DoctorResponse  `json:"doctor,omitempty"`
	Patient      *PatientResponse `json:"patient,omitempty"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		Role:         u.Role,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Phone:        u.Phone,
		Address:      u.Address,
		IDCardNumber: u.IDCardNumber,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Doctors & Patients
// ============================================================

// Doctor represents doctors table (1:1 with a doctor-role user)
type Doctor struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserID            uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Specialization    string    `gorm:"size:100;not null" json:"specialization"`
	WorkingHoursStart string    `gorm:"size:10" json:"working_hours_start"`
	WorkingHoursEnd   string    `gorm:"size:10" json:"working_hours_end"`
	ConsultationFee   float64   `gorm:"type:decimal(10,2);not null" json:"consultation_fee"`
	ExperienceSummary string    `gorm:"type:text" json:"experience_summary"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	User     *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Holidays []DoctorHoliday `gorm:"foreignKey:DoctorID" json:"holidays,omitempty"`
}

func (Doctor) TableName() string {
	return "doctors"
}

// DoctorResponse DTO
type DoctorResponse struct {
	ID                uint            `json:"id"`
	UserID            uint            `json:"user_id"`
	FirstName         string          `json:"first_name,omitempty"`
	LastName          string          `json:"last_name,omitempty"`
	Email             string          `json:"email,omitempty"`
	Phone             string          `json:"phone,omitempty"`
	Specialization    string          `json:"specialization"`
	WorkingHoursStart string          `json:"working_hours_start"`
	WorkingHoursEnd   string          `json:"working_hours_end"`
	ConsultationFee   float64         `json:"consultation_fee"`
	ExperienceSummary string          `json:"experience_summary,omitempty"`
	IsActive          bool            `json:"is_active"`
	Holidays          []DoctorHoliday `json:"holidays,omitempty"`
}

func (d *Doctor) ToResponse() *DoctorResponse {
	resp := &DoctorResponse{
		ID:                d.ID,
		UserID:            d.UserID,
		Specialization:    d.Specialization,
		WorkingHoursStart: d.WorkingHoursStart,
		WorkingHoursEnd:   d.WorkingHoursEnd,
		ConsultationFee:   d.ConsultationFee,
		ExperienceSummary: d.ExperienceSummary,
		Holidays:          d.Holidays,
	}
	if d.User != nil {
		resp.FirstName = d.User.FirstName
		resp.LastName = d.User.LastName
		resp.Email = d.User.Email
		resp.Phone = d.User.Phone
		resp.IsActive = d.User.IsActive
	}
	return resp
}

// DoctorHoliday represents doctor_holidays table.
// The composite unique index makes a duplicate date insert fail at the
// storage layer ("reject" policy).
type DoctorHoliday struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	DoctorID    uint      `gorm:"not null;uniqueIndex:idx_doctor_holiday_date" json:"doctor_id"`
	HolidayDate time.Time `gorm:"type:date;not null;uniqueIndex:idx_doctor_holiday_date" json:"holiday_date"`
	Reason      string    `gorm:"size:200" json:"reason"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (DoctorHoliday) TableName() string {
	return "doctor_holidays"
}

// Patient represents patients table (1:1 with a patient-role user)
type Patient struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	UserID                uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	DateOfBirth           *time.Time `gorm:"type:date" json:"date_of_birth"`
	Gender                string     `gorm:"size:10" json:"gender"`
	EmergencyContactName  string     `gorm:"size:100" json:"emergency_contact_name"`
	EmergencyContactPhone string     `gorm:"size:20" json:"emergency_contact_phone"`
	MedicalHistory        string     `gorm:"type:text" json:"medical_history"`
	Allergies             string     `gorm:"type:text" json:"allergies"`
	CreatedAt             time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Patient) TableName() string {
	return "patients"
}

// PatientResponse DTO
type PatientResponse struct {
	ID                    uint       `json:"id"`
	UserID                uint       `json:"user_id"`
	FirstName             string     `json:"first_name,omitempty"`
	LastName              string     `json:"last_name,omitempty"`
	Email                 string     `json:"email,omitempty"`
	Phone                 string     `json:"phone,omitempty"`
	Address               string     `json:"address,omitempty"`
	IDCardNumber          string     `json:"id_card_number,omitempty"`
	DateOfBirth           *time.Time `json:"date_of_birth"`
	Gender                string     `json:"gender,omitempty"`
	EmergencyContactName  string     `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string     `json:"emergency_contact_phone,omitempty"`
	MedicalHistory        string     `json:"medical_history,omitempty"`
	Allergies             string     `json:"allergies,omitempty"`
	IsActive              bool       `json:"is_active"`
	CreatedAt             time.Time  `json:"created_at"`
}

func (p *Patient) ToResponse() *PatientResponse {
	resp := &PatientResponse{
		ID:                    p.ID,
		UserID:                p.UserID,
		DateOfBirth:           p.DateOfBirth,
		Gender:                p.Gender,
		EmergencyContactName:  p.EmergencyContactName,
		EmergencyContactPhone: p.EmergencyContactPhone,
		MedicalHistory:        p.MedicalHistory,
		Allergies:             p.Allergies,
		CreatedAt:             p.CreatedAt,
	}
	if p.User != nil {
		resp.FirstName = p.User.FirstName
		resp.LastName = p.User.LastName
		resp.Email = p.User.Email
		resp.Phone = p.User.Phone
		resp.Address = p.User.Address
		resp.IDCardNumber = p.User.IDCardNumber
		resp.IsActive = p.User.IsActive
	}
	return resp
}

// ============================================================
// Appointments
// ============================================================

// AppointmentStatus values. scheduled is the only non-terminal state.
type AppointmentStatus string

const (
	ApptStatusScheduled AppointmentStatus = "scheduled"
	ApptStatusCompleted AppointmentStatus = "completed"
	ApptStatusCancelled AppointmentStatus = "cancelled"
	ApptStatusNoShow    AppointmentStatus = "no_show"
)

// IsValid reports whether s is a known status
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case ApptStatusScheduled, ApptStatusCompleted, ApptStatusCancelled, ApptStatusNoShow:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is permitted from s
func (s AppointmentStatus) IsTerminal() bool {
	return s != ApptStatusScheduled
}

// Appointment represents appointments table.
//
// SlotKey is "{doctor_id}|{date}|{time}" while the appointment occupies its
// slot and NULL once cancelled. Its unique index is what makes the
// at-most-one-non-cancelled-appointment-per-slot invariant hold under
// concurrent bookings; MySQL never indexes NULLs as duplicates.
type Appointment struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	DoctorID        uint              `gorm:"not null;index" json:"doctor_id"`
	PatientID       uint              `gorm:"not null;index" json:"patient_id"`
	AppointmentDate time.Time         `gorm:"type:date;not null" json:"appointment_date"`
	AppointmentTime string            `gorm:"size:10;not null" json:"appointment_time"`
	Status          AppointmentStatus `gorm:"size:20;not null;default:'scheduled'" json:"status"`
	SlotKey         *string           `gorm:"size:64;uniqueIndex" json:"-"`
	ConsultationFee float64           `gorm:"type:decimal(10,2);not null" json:"consultation_fee"`
	Notes           string            `gorm:"type:text" json:"notes"`
	CreatedBy       uint              `gorm:"not null" json:"created_by"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Doctor  *Doctor  `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Patient *Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// SlotKeyFor builds the uniqueness key for a (doctor, date, time) slot
func SlotKeyFor(doctorID uint, date time.Time, timeOfDay string) string {
	return fmt.Sprintf("%d|%s|%s", doctorID, date.Format("2006-01-02"), timeOfDay)
}

// AppointmentResponse DTO
type AppointmentResponse struct {
	ID              uint              `json:"id"`
	DoctorID        uint              `json:"doctor_id"`
	PatientID       uint              `json:"patient_id"`
	AppointmentDate string            `json:"appointment_date"`
	AppointmentTime string            `json:"appointment_time"`
	Status          AppointmentStatus `json:"status"`
	ConsultationFee float64           `json:"consultation_fee"`
	Notes           string            `json:"notes,omitempty"`
	CreatedBy       uint              `json:"created_by"`
	DoctorName      string            `json:"doctor_name,omitempty"`
	Specialization  string            `json:"specialization,omitempty"`
	PatientName     string            `json:"patient_name,omitempty"`
	PatientPhone    string            `json:"patient_phone,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func (a *Appointment) ToResponse() *AppointmentResponse {
	resp := &AppointmentResponse{
		ID:              a.ID,
		DoctorID:        a.DoctorID,
		PatientID:       a.PatientID,
		AppointmentDate: a.AppointmentDate.Format("2006-01-02"),
		AppointmentTime: a.AppointmentTime,
		Status:          a.Status,
		ConsultationFee: a.ConsultationFee,
		Notes:           a.Notes,
		CreatedBy:       a.CreatedBy,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
	if a.Doctor != nil {
		resp.Specialization = a.Doctor.Specialization
		if a.Doctor.User != nil {
			resp.DoctorName = a.Doctor.User.FirstName + " " + a.Doctor.User.LastName
		}
	}
	if a.Patient != nil && a.Patient.User != nil {
		resp.PatientName = a.Patient.User.FirstName + " " + a.Patient.User.LastName
		resp.PatientPhone = a.Patient.User.Phone
	}
	return resp
}

// ============================================================
// Invoices
// ============================================================

// Invoice payment statuses
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

// Invoice represents invoices table (1:1 with an appointment)
type Invoice struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	AppointmentID uint      `gorm:"uniqueIndex;not null" json:"appointment_id"`
	PatientID     uint      `gorm:"not null;index" json:"patient_id"`
	InvoiceNumber string    `gorm:"size:64;uniqueIndex;not null" json:"invoice_number"`
	AmountDue     float64   `gorm:"type:decimal(10,2);not null" json:"amount_due"`
	PaymentStatus string    `gorm:"size:20;not null;default:'pending'" json:"payment_status"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Appointment *Appointment `gorm:"foreignKey:AppointmentID" json:"appointment,omitempty"`
	Patient     *Patient     `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

func (Invoice) TableName() string {
	return "invoices"
}

// ============================================================
// Medical Records
// ============================================================

// MedicalRecord represents medical_records table
type MedicalRecord struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	AppointmentID uint      `gorm:"not null;index" json:"appointment_id"`
	PatientID     uint      `gorm:"not null;index" json:"patient_id"`
	DoctorID      uint      `gorm:"not null;index" json:"doctor_id"`
	Diagnosis     string    `gorm:"type:text" json:"diagnosis"`
	Treatment     string    `gorm:"type:text" json:"treatment"`
	Medications   string    `gorm:"type:text" json:"medications"`
	LabResults    string    `gorm:"type:text" json:"lab_results"`
	DoctorNotes   string    `gorm:"type:text" json:"doctor_notes"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Appointment *Appointment `gorm:"foreignKey:AppointmentID" json:"appointment,omitempty"`
	Doctor      *Doctor      `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Patient     *Patient     `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

func (MedicalRecord) TableName() string {
	return "medical_records"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate creates or updates all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Doctor{},
		&DoctorHoliday{},
		&Patient{},
		&Appointment{},
		&Invoice{},
		&MedicalRecord{},
	)
}
