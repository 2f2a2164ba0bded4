package utils

import (
	"fmt"
	"regexp"
	"strconv"
)

const (
	firstSlotMinutes = 11 * 60
	lastSlotMinutes  = 23*60 + 30
	slotStepMinutes  = 30
)

var clockPattern = regexp.MustCompile(`^(1[0-2]|[1-9]):([0-5][0-9]) (AM|PM)$`)

// FormatClock renders minutes since midnight as "h:mm AM/PM"
func FormatClock(minutes int) string {
	hour := (minutes / 60) % 24
	minute := minutes % 60

	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%02d %s", display, minute, period)
}

// ParseClock parses "h:mm AM/PM" into minutes since midnight
func ParseClock(s string) (int, bool) {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour == 12 {
		hour = 0
	}
	if m[3] == "PM" {
		hour += 12
	}
	return hour*60 + minute, true
}

// ReservationTimeSlots lists the bookable times, 11:00 AM to 11:30 PM every
// half hour.
func ReservationTimeSlots() []string {
	slots := make([]string, 0, (lastSlotMinutes-firstSlotMinutes)/slotStepMinutes+1)
	for m := firstSlotMinutes; m <= lastSlotMinutes; m += slotStepMinutes {
		slots = append(slots, FormatClock(m))
	}
	return slots
}
