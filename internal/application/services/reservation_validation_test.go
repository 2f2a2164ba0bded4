package services_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/reservenow/backend/internal/application/services"
	"github.com/reservenow/backend/internal/domain/entities"
	"github.com/reservenow/backend/pkg/utils"
)

// 2026-10-15 10:00 in Kuala Lumpur
var fixedNow = time.Date(2026, time.October, 15, 2, 0, 0, 0, time.UTC)

func newValidator() *services.ReservationValidator {
	return services.NewReservationValidator(utils.MalaysianMobile, kualaLumpur, 90).
		WithClock(func() time.Time { return fixedNow })
}

func validRequest() *entities.ReservationRequest {
	return &entities.ReservationRequest{
		Name:      "Ali",
		PartySize: 2,
		Date:      time.Date(2026, time.October, 20, 0, 0, 0, 0, time.UTC),
		Time:      "7:30 PM",
		Phone:     "0123456789",
	}
}

func TestReservationValidator_Valid(t *testing.T) {
	req := validRequest()
	req.Name = "  Ali  "

	result := newValidator().Validate(req)

	assert.True(t, result.Valid())
	assert.Nil(t, result.Errors)
	assert.Equal(t, "Ali", req.Name)
}

func TestReservationValidator_FieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*entities.ReservationRequest)
		field  string
		msg    string
	}{
		{"missing name", func(r *entities.ReservationRequest) { r.Name = "   " }, services.FieldName, "Name is required"},
		{"short name", func(r *entities.ReservationRequest) { r.Name = "A" }, services.FieldName, "Name must be at least 2 characters"},
		{"long name", func(r *entities.ReservationRequest) { r.Name = strings.Repeat("a", 51) }, services.FieldName, "Name must be less than 50 characters"},
		{"party too small", func(r *entities.ReservationRequest) { r.PartySize = 0 }, services.FieldPartySize, "Minimum 1 person"},
		{"party too large", func(r *entities.ReservationRequest) { r.PartySize = 21 }, services.FieldPartySize, "Maximum 20 people"},
		{"missing date", func(r *entities.ReservationRequest) { r.Date = time.Time{} }, services.FieldDate, "Date is required"},
		{"past date", func(r *entities.ReservationRequest) { r.Date = time.Date(2026, time.October, 14, 0, 0, 0, 0, time.UTC) }, services.FieldDate, "Date cannot be in the past"},
		{"too far ahead", func(r *entities.ReservationRequest) { r.Date = time.Date(2027, time.January, 14, 0, 0, 0, 0, time.UTC) }, services.FieldDate, "Date must be within 90 days"},
		{"missing time", func(r *entities.ReservationRequest) { r.Time = "" }, services.FieldTime, "Time is required"},
		{"24h time", func(r *entities.ReservationRequest) { r.Time = "19:30" }, services.FieldTime, "Time must look like 7:30 PM"},
		{"missing phone", func(r *entities.ReservationRequest) { r.Phone = "" }, services.FieldPhone, "Phone number is required"},
		{"landline phone", func(r *entities.ReservationRequest) { r.Phone = "0203456789" }, services.FieldPhone, "Please enter a valid Malaysian mobile number"},
		{"long special requests", func(r *entities.ReservationRequest) { r.SpecialRequests = strings.Repeat("x", 201) }, services.FieldSpecialRequests, "Maximum 200 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			result := newValidator().Validate(req)

			assert.False(t, result.Valid())
			assert.Len(t, result.Errors, 1)
			assert.Equal(t, tt.msg, result.Errors[tt.field])
		})
	}
}

func TestReservationValidator_Boundaries(t *testing.T) {
	v := newValidator()

	t.Run("today is allowed", func(t *testing.T) {
		req := validRequest()
		req.Date = time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC)
		assert.True(t, v.Validate(req).Valid())
	})

	t.Run("exactly 90 days ahead is allowed", func(t *testing.T) {
		req := validRequest()
		req.Date = time.Date(2027, time.January, 13, 0, 0, 0, 0, time.UTC)
		assert.True(t, v.Validate(req).Valid())
	})

	t.Run("party size limits", func(t *testing.T) {
		for _, size := range []int{1, 20} {
			req := validRequest()
			req.PartySize = size
			assert.True(t, v.Validate(req).Valid())
		}
	})

	t.Run("special requests of 200 runes", func(t *testing.T) {
		req := validRequest()
		req.SpecialRequests = strings.Repeat("é", 200)
		assert.True(t, v.Validate(req).Valid())
	})

	t.Run("reports every failing field", func(t *testing.T) {
		result := v.Validate(&entities.ReservationRequest{})
		assert.Len(t, result.Errors, 5)
	})
}

func TestReservationValidator_TodayUsesLocation(t *testing.T) {
	// 16:30 UTC on the 15th is already the 16th in Kuala Lumpur
	late := time.Date(2026, time.October, 15, 16, 30, 0, 0, time.UTC)
	v := services.NewReservationValidator(utils.MalaysianMobile, kualaLumpur, 90).
		WithClock(func() time.Time { return late })

	assert.Equal(t, 16, v.Today().Day())

	req := validRequest()
	req.Date = time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Date cannot be in the past", v.Validate(req).Errors[services.FieldDate])
}
