package models

import "time"

// Booking is a request to reserve a provider at one hour. It is built once by
// the booking workflow and never mutated afterwards.
type Booking struct {
	ProviderID string
	Date       time.Time
}

// CreateAppointmentRequest is the body of POST /appointments
type CreateAppointmentRequest struct {
	ProviderID string    `json:"provider_id" binding:"required"`
	Date       time.Time `json:"date" binding:"required"`
}

// Appointment is the server's record of a committed booking
type Appointment struct {
	ID         string    `json:"id"`
	ProviderID string    `json:"provider_id"`
	UserID     string    `json:"user_id"`
	Date       time.Time `json:"date"`
}
