package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Common domain errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrInternalServer = errors.New("internal server error")
)

// Identity errors
var (
	ErrUnauthenticated    = errors.New("authentication required")
	ErrAccountDeactivated = errors.New("account is deactivated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrTokenRevoked       = errors.New("token revoked")
)

// User errors
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidRole     = errors.New("invalid role")
)

// Profile errors
var (
	ErrDoctorNotFound  = errors.New("doctor not found")
	ErrPatientNotFound = errors.New("patient not found")
	ErrHolidayNotFound = errors.New("holiday not found")
	ErrHolidayExists   = errors.New("holiday already exists for this date")
)

// Appointment errors
var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrSlotTaken           = errors.New("doctor is not available at this time slot")
	ErrDoctorOnHoliday     = errors.New("doctor is on holiday on this date")
	ErrInvalidTransition   = errors.New("invalid appointment status transition")
	ErrInvalidStatus       = errors.New("invalid appointment status")
)

// Invoice errors
var (
	ErrInvoiceNotFound      = errors.New("invoice not found")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
)

// ForbiddenError carries the details of a failed authorization decision so
// the HTTP layer can tell the caller which roles would have been accepted.
type ForbiddenError struct {
	Action        string
	RequiredRoles []Role
	ActualRole    Role
	Reason        string
}

func (e *ForbiddenError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	if len(e.RequiredRoles) > 0 {
		names := make([]string, len(e.RequiredRoles))
		for i, r := range e.RequiredRoles {
			names[i] = string(r)
		}
		return fmt.Sprintf("access denied: %s requires one of [%s], role is %s",
			e.Action, strings.Join(names, ", "), e.ActualRole)
	}
	return "access denied"
}

// IsForbidden reports whether err is an authorization failure
func IsForbidden(err error) bool {
	var fe *ForbiddenError
	return errors.As(err, &fe)
}
