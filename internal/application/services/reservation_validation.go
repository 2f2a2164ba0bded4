package services

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/reservenow/backend/internal/domain/entities"
	"github.com/reservenow/backend/pkg/utils"
)

// Form field names used as FieldErrors keys
const (
	FieldName            = "name"
	FieldPartySize       = "partySize"
	FieldDate            = "date"
	FieldTime            = "time"
	FieldPhone           = "phone"
	FieldSpecialRequests = "specialRequests"
)

// ReservationValidator checks reservation forms. Failures are returned per
// field and never as errors.
type ReservationValidator struct {
	phone          utils.PhoneRules
	location       *time.Location
	maxAdvanceDays int
	now            func() time.Time
}

// NewReservationValidator creates a validator. Dates are judged against the
// current day in loc.
func NewReservationValidator(phone utils.PhoneRules, loc *time.Location, maxAdvanceDays int) *ReservationValidator {
	if loc == nil {
		loc = time.UTC
	}
	return &ReservationValidator{
		phone:          phone,
		location:       loc,
		maxAdvanceDays: maxAdvanceDays,
		now:            time.Now,
	}
}

// WithClock replaces the time source, for tests
func (v *ReservationValidator) WithClock(now func() time.Time) *ReservationValidator {
	v.now = now
	return v
}

// Today returns midnight of the current day in the validator's location
func (v *ReservationValidator) Today() time.Time {
	return startOfDay(v.now().In(v.location))
}

// Validate trims text fields in place and reports every failing field
func (v *ReservationValidator) Validate(req *entities.ReservationRequest) entities.ValidationResult {
	errs := entities.FieldErrors{}

	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Time = strings.TrimSpace(req.Time)
	req.SpecialRequests = strings.TrimSpace(req.SpecialRequests)

	switch n := utf8.RuneCountInString(req.Name); {
	case n == 0:
		errs[FieldName] = "Name is required"
	case n < entities.MinNameLength:
		errs[FieldName] = fmt.Sprintf("Name must be at least %d characters", entities.MinNameLength)
	case n > entities.MaxNameLength:
		errs[FieldName] = fmt.Sprintf("Name must be less than %d characters", entities.MaxNameLength)
	}

	switch {
	case req.PartySize < entities.MinPartySize:
		errs[FieldPartySize] = fmt.Sprintf("Minimum %d person", entities.MinPartySize)
	case req.PartySize > entities.MaxPartySize:
		errs[FieldPartySize] = fmt.Sprintf("Maximum %d people", entities.MaxPartySize)
	}

	if req.Date.IsZero() {
		errs[FieldDate] = "Date is required"
	} else {
		today := v.Today()
		day := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, v.location)
		switch {
		case day.Before(today):
			errs[FieldDate] = "Date cannot be in the past"
		case v.maxAdvanceDays > 0 && day.After(today.AddDate(0, 0, v.maxAdvanceDays)):
			errs[FieldDate] = fmt.Sprintf("Date must be within %d days", v.maxAdvanceDays)
		}
	}

	if req.Time == "" {
		errs[FieldTime] = "Time is required"
	} else if _, ok := utils.ParseClock(req.Time); !ok {
		errs[FieldTime] = "Time must look like 7:30 PM"
	}

	if req.Phone == "" {
		errs[FieldPhone] = "Phone number is required"
	} else if !v.phone.IsValidMobile(req.Phone) {
		errs[FieldPhone] = "Please enter a valid Malaysian mobile number"
	}

	if utf8.RuneCountInString(req.SpecialRequests) > entities.MaxSpecialRequestsSize {
		errs[FieldSpecialRequests] = fmt.Sprintf("Maximum %d characters", entities.MaxSpecialRequestsSize)
	}

	if len(errs) == 0 {
		return entities.ValidationResult{}
	}
	return entities.ValidationResult{Errors: errs}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
