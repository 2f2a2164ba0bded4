package entities

import "time"

// Reservation form limits
const (
	MinNameLength          = 2
	MaxNameLength          = 50
	MinPartySize           = 1
	MaxPartySize           = 20
	MaxSpecialRequestsSize = 200
)

// NoSpecialRequests is rendered when the requester left the field blank
const NoSpecialRequests = "None"

// SubmissionStatusSent is the status recorded for every hand-off
const SubmissionStatusSent = "Sent to WhatsApp"

// ReservationRequest is the reservation form as entered. It is never stored.
type ReservationRequest struct {
	Name            string    `json:"name"`
	PartySize       int       `json:"partySize"`
	Date            time.Time `json:"date"`
	Time            string    `json:"time"`
	Phone           string    `json:"phone"`
	SpecialRequests string    `json:"specialRequests"`
}

// FieldErrors maps a form field name to a user-facing message
type FieldErrors map[string]string

// ValidationResult is the outcome of checking a reservation form
type ValidationResult struct {
	Errors FieldErrors `json:"errors,omitempty"`
}

// Valid reports whether no field failed
func (v ValidationResult) Valid() bool {
	return len(v.Errors) == 0
}

// SubmissionLog is the record sent to the reservation log sinks
type SubmissionLog struct {
	SubmissionID    string `json:"submissionId"`
	Timestamp       string `json:"timestamp"`
	RestaurantName  string `json:"restaurantName"`
	RestaurantID    string `json:"restaurantId"`
	CustomerName    string `json:"customerName"`
	PartySize       int    `json:"partySize"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	Phone           string `json:"phone"`
	SpecialRequests string `json:"specialRequests"`
	Status          string `json:"status"`
}

// OpenMode tells how a deep link was handed to the requester
type OpenMode string

const (
	// OpenModeNewContext means the link was opened alongside the current page
	OpenModeNewContext OpenMode = "new"
	// OpenModeCurrentContext means the current page navigated to the link
	OpenModeCurrentContext OpenMode = "current"
)

// Submission is the outcome of a reservation hand-off. It confirms only that
// the link was opened, never that a message was sent.
type Submission struct {
	ID      string   `json:"submissionId"`
	URL     string   `json:"url"`
	Message string   `json:"message"`
	Opened  OpenMode `json:"opened"`
}
