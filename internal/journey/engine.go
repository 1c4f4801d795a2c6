package journey

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Engine selects due bookings and dispatches journey emails. All external
// state goes through the Store and Notifier ports so the engine is testable
// with fakes. Callers must serialize runs per (kind, club); overlapping
// runs racing on the same due set can double-send.
type Engine struct {
	store     Store
	notifier  Notifier
	campaigns map[Kind]Campaign
	logger    *slog.Logger
	now       func() time.Time
}

// NewEngine wires the engine. Campaign offsets and template IDs come from
// configuration; unknown kinds passed to engine methods return ErrUnknownKind.
func NewEngine(store Store, notifier Notifier, campaigns []Campaign, logger *slog.Logger) *Engine {
	byKind := make(map[Kind]Campaign, len(campaigns))
	for _, c := range campaigns {
		byKind[c.Kind] = c
	}
	return &Engine{
		store:     store,
		notifier:  notifier,
		campaigns: byKind,
		logger:    logger,
		now:       time.Now,
	}
}

// Campaign returns the registered campaign for a kind.
func (e *Engine) Campaign(kind Kind) (Campaign, error) {
	c, ok := e.campaigns[kind]
	if !ok {
		return Campaign{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return c, nil
}

// SelectDue returns the bookings due for a campaign when evaluated at asOf.
// Callers must treat the result as a set; ordering is not part of the
// contract.
func (e *Engine) SelectDue(ctx context.Context, kind Kind, asOf time.Time, club string) ([]Booking, error) {
	camp, err := e.Campaign(kind)
	if err != nil {
		return nil, err
	}
	return e.store.DueBookings(ctx, DueQuery{
		Kind:     kind,
		PlayDate: camp.TargetDate(asOf),
		Club:     club,
	})
}

// DispatchOne sends one journey email and marks the booking on confirmed
// success. All per-record errors are absorbed into the Result so one bad
// booking never aborts a batch.
func (e *Engine) DispatchOne(ctx context.Context, b Booking, kind Kind, dryRun bool) Result {
	res := Result{BookingID: b.BookingID, Email: b.GuestEmail}

	camp, err := e.Campaign(kind)
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Detail = err.Error()
		return res
	}

	if strings.TrimSpace(b.GuestEmail) == "" {
		e.logger.Warn("booking skipped", "booking_id", b.BookingID, "kind", kind, "error", ErrMissingRecipient)
		res.Outcome = OutcomeFailed
		res.Detail = ErrMissingRecipient.Error()
		return res
	}

	fields := TemplateFields(b, e.now())

	if dryRun {
		res.Outcome = OutcomeWouldSend
		res.Fields = fields
		return res
	}

	if err := e.notifier.Send(ctx, b.GuestEmail, camp.TemplateID, fields); err != nil {
		e.logger.Warn("send failed", "booking_id", b.BookingID, "kind", kind, "error", err)
		res.Outcome = OutcomeFailed
		res.Detail = err.Error()
		return res
	}

	res.Outcome = OutcomeSent
	res.Detail = fmt.Sprintf("%s email sent to %s", kind, b.GuestEmail)

	// The email went out; if the marker write fails the booking may be
	// picked up again on a later run. Surface it loudly, keep the outcome.
	if err := e.store.MarkSent(ctx, b.BookingID, kind, e.now()); err != nil {
		e.logger.Error("marker update failed after send; booking may be re-sent",
			"booking_id", b.BookingID, "kind", kind, "error", err)
		res.Detail = fmt.Sprintf("sent, but marker update failed: %v", err)
	}
	return res
}

// ProcessBatch runs one campaign end to end. It only returns an error when
// the batch cannot start (unknown kind, selection failure); per-record
// failures are counted in the report. Re-running immediately after a
// complete run selects at most the records that previously failed.
func (e *Engine) ProcessBatch(ctx context.Context, kind Kind, asOf time.Time, club string, dryRun bool) (BatchReport, error) {
	report := BatchReport{Kind: kind, DryRun: dryRun}

	due, err := e.SelectDue(ctx, kind, asOf, club)
	if err != nil {
		return report, fmt.Errorf("select due bookings: %w", err)
	}
	e.logger.Info("due bookings selected",
		"kind", kind, "count", len(due), "club", club, "dry_run", dryRun)

	for _, b := range due {
		report.add(e.DispatchOne(ctx, b, kind, dryRun))
	}

	e.logger.Info("journey batch complete",
		"kind", kind, "sent", report.Sent, "failed", report.Failed, "would_send", report.WouldSend)
	return report, nil
}
