package journey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTemplateFields(t *testing.T) {
	total := 385.5
	b := Booking{
		BookingID:  "BK-1042",
		GuestEmail: "jane@example.com",
		GuestName:  "Jane Doe",
		PlayDate:   time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC),
		TeeTime:    "8:40 AM",
		Players:    4,
		Courses:    "Black",
		Total:      &total,
	}
	now := time.Date(2026, time.March, 11, 9, 0, 0, 0, time.UTC)

	got := TemplateFields(b, now)
	assert.Equal(t, Fields{
		"guest_name":        "Jane Doe",
		"booking_date":      "Saturday, March 14, 2026",
		"course_name":       "Black",
		"tee_time":          "8:40 AM",
		"player_count":      "4",
		"booking_reference": "BK-1042",
		"current_year":      "2026",
		"total":             "$385.50",
	}, got)
}

func TestTemplateFieldsDefaults(t *testing.T) {
	b := Booking{
		BookingID:  "BK-7",
		GuestEmail: "john.smith@example.com",
		PlayDate:   time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
	}
	got := TemplateFields(b, time.Date(2026, time.May, 30, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, "John.Smith", got["guest_name"])
	assert.Equal(t, FallbackCourseName, got["course_name"])
	assert.Equal(t, TimeTBD, got["tee_time"])
	assert.Equal(t, "0", got["player_count"])
	assert.Equal(t, "$0.00", got["total"])
}

func TestGuestName(t *testing.T) {
	assert.Equal(t, "Ann", GuestName(Booking{GuestName: "Ann", GuestEmail: "x@y.z"}))
	assert.Equal(t, "Bob", GuestName(Booking{GuestEmail: "bob@example.com"}))
	assert.Equal(t, "Mary-Jane", GuestName(Booking{GuestEmail: "mary-jane@example.com"}))
	assert.Equal(t, "Guest", GuestName(Booking{}))
}
