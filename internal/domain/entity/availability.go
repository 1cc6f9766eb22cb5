package entity

import (
	"time"

	"github.com/lib/pq"
)

// AvailabilityTemplate is a doctor's recurring weekly offer: the weekday
// names they work and the time windows offered on each of those days.
// Windows are opaque "HH:MM-HH:MM" strings compared byte for byte.
type AvailabilityTemplate struct {
	Days      pq.StringArray `gorm:"type:text[]" json:"days"`
	TimeSlots pq.StringArray `gorm:"type:text[]" json:"time_slots"`
}

// WorksOn reports whether the template covers the given weekday, matched by
// its English name ("Monday").
func (t AvailabilityTemplate) WorksOn(day time.Weekday) bool {
	name := day.String()
	for _, d := range t.Days {
		if d == name {
			return true
		}
	}
	return false
}

// OpenWindows returns the template windows on the given weekday that are not
// held by an active appointment, in template order. Appointments in any
// other status are ignored. The result is never nil.
func (t AvailabilityTemplate) OpenWindows(day time.Weekday, booked []Appointment) []string {
	if !t.WorksOn(day) {
		return []string{}
	}

	held := make(map[string]struct{}, len(booked))
	for _, a := range booked {
		if a.Status.IsActive() {
			held[a.TimeSlot] = struct{}{}
		}
	}

	open := make([]string, 0, len(t.TimeSlots))
	for _, slot := range t.TimeSlots {
		if _, ok := held[slot]; !ok {
			open = append(open, slot)
		}
	}
	return open
}

// CalendarDay returns the calendar date of t as seen in loc, as midnight UTC.
// It is the value stored in appointments.appointment_day.
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
