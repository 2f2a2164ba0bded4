package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/reservenow/backend/internal/domain/entities"
)

// DefaultMessageFooter closes every reservation message
const DefaultMessageFooter = "Sent via ReserveNow.my"

// ReservationDateLayout renders dates as "Monday, 12 Oct 2026"
const ReservationDateLayout = "Monday, 2 Jan 2006"

// FormatReservationDate formats a reservation date for messages and logs
func FormatReservationDate(d time.Time) string {
	return d.Format(ReservationDateLayout)
}

// MessageBuilder renders reservation requests as plain text
type MessageBuilder struct {
	footer string
}

// NewMessageBuilder creates a builder. An empty footer uses DefaultMessageFooter.
func NewMessageBuilder(footer string) *MessageBuilder {
	if footer == "" {
		footer = DefaultMessageFooter
	}
	return &MessageBuilder{footer: footer}
}

// Build renders the request. The phone is shown as entered and the time as
// chosen from the slot list.
func (b *MessageBuilder) Build(r *entities.Restaurant, req *entities.ReservationRequest) string {
	special := req.SpecialRequests
	if special == "" {
		special = entities.NoSpecialRequests
	}

	noun := "people"
	if req.PartySize == 1 {
		noun = "person"
	}

	var sb strings.Builder
	sb.WriteString("🍽️ RESERVATION REQUEST\n\n")
	fmt.Fprintf(&sb, "Restaurant: %s\n", r.Name)
	fmt.Fprintf(&sb, "Date: %s\n", FormatReservationDate(req.Date))
	fmt.Fprintf(&sb, "Time: %s\n", req.Time)
	fmt.Fprintf(&sb, "Party Size: %d %s\n", req.PartySize, noun)
	fmt.Fprintf(&sb, "Name: %s\n", req.Name)
	fmt.Fprintf(&sb, "Contact: %s\n\n", req.Phone)
	sb.WriteString("Special Requests:\n")
	sb.WriteString(special)
	sb.WriteString("\n\n---\n")
	sb.WriteString(b.footer)
	return sb.String()
}

// BuildMessage renders req with the default footer
func BuildMessage(r *entities.Restaurant, req *entities.ReservationRequest) string {
	return NewMessageBuilder("").Build(r, req)
}
