package journey

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// playDateLayout matches the long date format the email templates expect,
// e.g. "Saturday, March 14, 2026".
const playDateLayout = "Monday, January 2, 2006"

// TemplateFields builds the dynamic template data for a booking email.
// Every value is a string; the templates do no type coercion.
func TemplateFields(b Booking, now time.Time) Fields {
	return Fields{
		"guest_name":        GuestName(b),
		"booking_date":      b.PlayDate.Format(playDateLayout),
		"course_name":       courseName(b),
		"tee_time":          ResolveTeeTime(b),
		"player_count":      strconv.Itoa(b.Players),
		"booking_reference": b.BookingID,
		"current_year":      strconv.Itoa(now.Year()),
		"total":             formatTotal(b.Total),
	}
}

// GuestName returns the recorded guest name, falling back to a title-cased
// version of the email's local part ("john.smith@..." → "John.Smith").
func GuestName(b Booking) string {
	if name := strings.TrimSpace(b.GuestName); name != "" {
		return name
	}
	local, _, _ := strings.Cut(b.GuestEmail, "@")
	if local == "" {
		return "Guest"
	}
	return titleCase(local)
}

func courseName(b Booking) string {
	if c := strings.TrimSpace(b.Courses); c != "" {
		return c
	}
	return FallbackCourseName
}

func formatTotal(total *float64) string {
	if total == nil {
		return "$0.00"
	}
	return fmt.Sprintf("$%.2f", *total)
}

// titleCase upper-cases every letter that follows a non-letter and
// lower-cases the rest, so "john.smith" becomes "John.Smith".
func titleCase(s string) string {
	var out strings.Builder
	out.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				out.WriteRune(unicode.ToLower(r))
			} else {
				out.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			out.WriteRune(r)
			prevLetter = false
		}
	}
	return out.String()
}
