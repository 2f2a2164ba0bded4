package services

import (
	"strconv"
	"strings"
	"time"

	"github.com/reservenow/backend/internal/domain/entities"
)

// IsOpen reports whether r is open at now, read in now's location. Each
// range includes both endpoints. A range whose close time is before its
// open time (past midnight) never matches; no catalog entry uses one.
func IsOpen(r *entities.Restaurant, now time.Time) bool {
	schedule, ok := r.OperatingHours[entities.Weekdays[now.Weekday()]]
	if !ok || schedule == entities.ScheduleClosed {
		return false
	}
	if schedule == entities.ScheduleAlwaysOpen {
		return true
	}

	current := now.Hour()*60 + now.Minute()
	for _, part := range strings.Split(schedule, ",") {
		from, to, ok := parseRange(strings.TrimSpace(part))
		if !ok {
			continue
		}
		if current >= from && current <= to {
			return true
		}
	}
	return false
}

func parseRange(s string) (from, to int, ok bool) {
	openAt, closeAt, found := strings.Cut(s, "-")
	if !found {
		return 0, 0, false
	}
	if from, ok = parseHHMM(openAt); !ok {
		return 0, 0, false
	}
	if to, ok = parseHHMM(closeAt); !ok {
		return 0, 0, false
	}
	return from, to, true
}

func parseHHMM(s string) (int, bool) {
	h, m, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		return 0, false
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 24 {
		return 0, false
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}
