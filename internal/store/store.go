// Package store is the pgx-backed implementation of the journey engine's
// booking persistence port.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jimbobirecode/streamsong-dashboard/internal/journey"
)

// Store reads and patches booking rows. Bookings are created and mutated by
// the upstream booking workflow; the only writes here are the sent markers
// and the tee-time backfill.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func New(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	return &Store{pool: pool, logger: logger}
}

const dueBookingsBase = `
	SELECT
		booking_id,
		COALESCE(guest_email, ''),
		COALESCE(guest_name, ''),
		date,
		COALESCE(tee_time, ''),
		COALESCE(selected_tee_times, ''),
		COALESCE(note, ''),
		COALESCE(players, 0),
		COALESCE(golf_courses, ''),
		total,
		COALESCE(status, ''),
		COALESCE(club, ''),
		pre_arrival_email_sent_at,
		post_play_email_sent_at
	FROM bookings`

// markerColumn maps a campaign kind to its bookings column. Column names
// are taken from this fixed map, never from input.
func markerColumn(kind journey.Kind) (string, error) {
	switch kind {
	case journey.PreArrival:
		return "pre_arrival_email_sent_at", nil
	case journey.PostPlay:
		return "post_play_email_sent_at", nil
	}
	return "", fmt.Errorf("%w: %q", journey.ErrUnknownKind, kind)
}

// dueSQL builds the due-booking selection for a query. The ORDER BY keeps
// operator output stable; consumers treat the result as a set.
func dueSQL(q journey.DueQuery) (string, []any, error) {
	marker, err := markerColumn(q.Kind)
	if err != nil {
		return "", nil, err
	}
	conds := []string{"status = $1", "date = $2", marker + " IS NULL"}
	args := []any{journey.StatusConfirmed, q.PlayDate}
	if q.Club != "" {
		args = append(args, q.Club)
		conds = append(conds, fmt.Sprintf("club = $%d", len(args)))
	}
	return dueBookingsBase + "\n\tWHERE " + strings.Join(conds, " AND ") +
		"\n\tORDER BY date, tee_time", args, nil
}

// DueBookings returns confirmed bookings playing on q.PlayDate whose marker
// for q.Kind is unset.
func (s *Store) DueBookings(ctx context.Context, q journey.DueQuery) ([]journey.Booking, error) {
	sql, args, err := dueSQL(q)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query due bookings: %w", err)
	}
	defer rows.Close()

	var bookings []journey.Booking
	for rows.Next() {
		var b journey.Booking
		if err := rows.Scan(
			&b.BookingID, &b.GuestEmail, &b.GuestName, &b.PlayDate,
			&b.TeeTime, &b.SelectedTeeTimes, &b.Note,
			&b.Players, &b.Courses, &b.Total, &b.Status, &b.Club,
			&b.PreArrivalSentAt, &b.PostPlaySentAt,
		); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// MarkSent stamps the campaign marker for a booking. The prepared update
// only touches rows whose marker is still NULL, so the marker is write-once
// from the engine's side.
func (s *Store) MarkSent(ctx context.Context, bookingID string, kind journey.Kind, sentAt time.Time) error {
	stmt := "mark_pre_arrival_sent"
	if kind == journey.PostPlay {
		stmt = "mark_post_play_sent"
	}
	tag, err := s.pool.Exec(ctx, stmt, bookingID, sentAt)
	if err != nil {
		return fmt.Errorf("mark %s sent for %s: %w", kind, bookingID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mark %s sent: booking %s not found or marker already set", kind, bookingID)
	}
	return nil
}

// CampaignStats counts bookings for one play date: still due vs already
// marked for the campaign.
func (s *Store) CampaignStats(ctx context.Context, kind journey.Kind, playDate time.Time) (due, sent int, err error) {
	marker, err := markerColumn(kind)
	if err != nil {
		return 0, 0, err
	}
	sql := fmt.Sprintf(`
		SELECT
			COUNT(*) FILTER (WHERE %[1]s IS NULL),
			COUNT(*) FILTER (WHERE %[1]s IS NOT NULL)
		FROM bookings
		WHERE status = $1 AND date = $2`, marker)
	if err := s.pool.QueryRow(ctx, sql, journey.StatusConfirmed, playDate).Scan(&due, &sent); err != nil {
		return 0, 0, fmt.Errorf("campaign stats: %w", err)
	}
	return due, sent, nil
}

// BackfillReport summarizes one tee-time backfill pass.
type BackfillReport struct {
	Scanned    int `json:"scanned"`
	Updated    int `json:"updated"`
	Unresolved int `json:"unresolved"`
}

// Summary returns a one-line summary for logs.
func (r BackfillReport) Summary() string {
	return fmt.Sprintf("scanned=%d updated=%d unresolved=%d", r.Scanned, r.Updated, r.Unresolved)
}

type missingTeeTimeRow struct {
	ID        int64
	BookingID string
	Note      string
}

// BackfillTeeTimes repairs rows with a missing or placeholder tee_time
// column by extracting a labeled time from the note text. With dryRun the
// extraction runs but nothing is written.
func (s *Store) BackfillTeeTimes(ctx context.Context, dryRun bool) (BackfillReport, error) {
	var report BackfillReport

	rows, err := s.pool.Query(ctx, "bookings_missing_tee_time")
	if err != nil {
		return report, fmt.Errorf("query bookings missing tee time: %w", err)
	}
	defer rows.Close()

	var candidates []missingTeeTimeRow
	for rows.Next() {
		var r missingTeeTimeRow
		if err := rows.Scan(&r.ID, &r.BookingID, &r.Note); err != nil {
			return report, fmt.Errorf("scan booking: %w", err)
		}
		candidates = append(candidates, r)
	}
	if err := rows.Err(); err != nil {
		return report, err
	}
	rows.Close()

	report.Scanned = len(candidates)
	for _, c := range candidates {
		teeTime, ok := journey.ExtractTimeFromNote(c.Note)
		if !ok {
			s.logger.Warn("no tee time in note", "booking_id", c.BookingID)
			report.Unresolved++
			continue
		}
		if !dryRun {
			if _, err := s.pool.Exec(ctx, "update_tee_time", c.ID, teeTime); err != nil {
				return report, fmt.Errorf("update tee time for %s: %w", c.BookingID, err)
			}
		}
		s.logger.Info("tee time extracted", "booking_id", c.BookingID, "tee_time", teeTime, "dry_run", dryRun)
		report.Updated++
	}
	return report, nil
}
