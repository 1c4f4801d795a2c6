// Package journey implements the pre-arrival and post-play guest email
// lifecycle: selecting bookings that are due for a campaign, normalizing
// legacy tee-time values, sending through the mail provider, and recording
// a sent marker so no booking is emailed twice for the same campaign.
//
// Pipeline: select due → build template fields → send → mark sent.
// ProcessBatch is cron-driven (once daily via cmd/journey) and is safe to
// re-run: markers exclude already-sent bookings from the next selection.
package journey

import (
	"context"
	"errors"
	"time"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	// StatusConfirmed is the booking status eligible for journey emails.
	StatusConfirmed = "Confirmed"

	// FallbackCourseName is used when a booking has no course recorded.
	FallbackCourseName = "Streamsong Golf Resort"

	// TimeTBD is the display value when no tee time can be resolved.
	TimeTBD = "TBD"
)

// Sentinel errors surfaced by the engine and its collaborators.
var (
	// ErrMissingRecipient means the booking has no guest email; the record
	// fails locally and no send is attempted.
	ErrMissingRecipient = errors.New("booking has no guest email")

	// ErrNotConfigured means the mail provider credentials or template are
	// missing. Fatal for a live run; dry runs never hit it.
	ErrNotConfigured = errors.New("mail provider not configured")

	// ErrUnknownKind means the requested campaign kind is not registered.
	ErrUnknownKind = errors.New("unknown journey kind")
)

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

// Kind identifies one of the two journey campaigns.
type Kind string

const (
	PreArrival Kind = "pre-arrival"
	PostPlay   Kind = "post-play"
)

// ParseKind validates a kind supplied by the CLI or API.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case PreArrival, PostPlay:
		return Kind(s), nil
	}
	return "", ErrUnknownKind
}

// Campaign binds a kind to its timing and mail template. Offsets and
// template IDs come from configuration, not from this package.
type Campaign struct {
	Kind       Kind
	OffsetDays int    // distance between the evaluation date and the play date
	Direction  int    // +1: play date is ahead (pre-arrival), -1: behind (post-play)
	TemplateID string // SendGrid dynamic template
}

// TargetDate returns the play date a booking must have to be due for this
// campaign when evaluated at asOf.
func (c Campaign) TargetDate(asOf time.Time) time.Time {
	return asOf.AddDate(0, 0, c.Direction*c.OffsetDays)
}

// Booking is the engine's read-mostly view of a stored booking row. The
// engine's only mutation is setting the sent marker for one campaign.
type Booking struct {
	BookingID        string
	GuestEmail       string
	GuestName        string
	PlayDate         time.Time
	TeeTime          string // dedicated column, often empty on legacy rows
	SelectedTeeTimes string // JSON or Go map-literal text on legacy rows
	Note             string // free text that may embed "Time: 09:00 AM"
	Players          int
	Courses          string
	Total            *float64
	Status           string
	Club             string
	PreArrivalSentAt *time.Time
	PostPlaySentAt   *time.Time
}

// SentAt returns the booking's marker for a campaign; nil means unsent.
func (b Booking) SentAt(kind Kind) *time.Time {
	if kind == PostPlay {
		return b.PostPlaySentAt
	}
	return b.PreArrivalSentAt
}

// Fields is the dynamic template data sent with a journey email.
type Fields map[string]string

// --------------------------------------------------------------------------
// Ports
// --------------------------------------------------------------------------

// DueQuery selects confirmed bookings playing on PlayDate whose marker for
// Kind is unset. Club, when non-empty, restricts to one club.
type DueQuery struct {
	Kind     Kind
	PlayDate time.Time
	Club     string
}

// Store is the booking persistence the engine consumes.
type Store interface {
	DueBookings(ctx context.Context, q DueQuery) ([]Booking, error)
	MarkSent(ctx context.Context, bookingID string, kind Kind, sentAt time.Time) error
}

// Notifier delivers one templated email. Implementations own provider
// timeouts; the engine only interprets the returned error.
type Notifier interface {
	Send(ctx context.Context, recipient, templateID string, fields Fields) error
}
