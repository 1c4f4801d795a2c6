package journey

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDay = time.Date(2026, time.April, 10, 8, 0, 0, 0, time.UTC)

// fakeStore applies the same eligibility predicate the SQL store does, so
// idempotency can be exercised end to end through the engine.
type fakeStore struct {
	bookings []Booking
	markErr  error
	marks    []string // booking IDs passed to MarkSent
}

func (s *fakeStore) DueBookings(_ context.Context, q DueQuery) ([]Booking, error) {
	var due []Booking
	for _, b := range s.bookings {
		if b.Status != StatusConfirmed {
			continue
		}
		if !sameDay(b.PlayDate, q.PlayDate) {
			continue
		}
		if b.SentAt(q.Kind) != nil {
			continue
		}
		if q.Club != "" && b.Club != q.Club {
			continue
		}
		due = append(due, b)
	}
	return due, nil
}

func (s *fakeStore) MarkSent(_ context.Context, bookingID string, kind Kind, sentAt time.Time) error {
	if s.markErr != nil {
		return s.markErr
	}
	s.marks = append(s.marks, bookingID)
	for i := range s.bookings {
		if s.bookings[i].BookingID != bookingID {
			continue
		}
		at := sentAt
		if kind == PostPlay {
			s.bookings[i].PostPlaySentAt = &at
		} else {
			s.bookings[i].PreArrivalSentAt = &at
		}
	}
	return nil
}

func sameDay(a, b time.Time) bool {
	return a.Format(time.DateOnly) == b.Format(time.DateOnly)
}

type sendCall struct {
	recipient  string
	templateID string
	fields     Fields
}

type fakeNotifier struct {
	calls   []sendCall
	failFor map[string]error // keyed by recipient
}

func (n *fakeNotifier) Send(_ context.Context, recipient, templateID string, fields Fields) error {
	n.calls = append(n.calls, sendCall{recipient, templateID, fields})
	if err, ok := n.failFor[recipient]; ok {
		return err
	}
	return nil
}

func testCampaigns() []Campaign {
	return []Campaign{
		{Kind: PreArrival, OffsetDays: 3, Direction: 1, TemplateID: "d-pre"},
		{Kind: PostPlay, OffsetDays: 2, Direction: -1, TemplateID: "d-post"},
	}
}

func newTestEngine(st *fakeStore, n *fakeNotifier) *Engine {
	e := NewEngine(st, n, testCampaigns(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	e.now = func() time.Time { return testDay }
	return e
}

func confirmed(id, email string, playDate time.Time) Booking {
	return Booking{
		BookingID:  id,
		GuestEmail: email,
		PlayDate:   playDate,
		Status:     StatusConfirmed,
	}
}

func TestSelectDueEligibility(t *testing.T) {
	sentAt := testDay.AddDate(0, 0, -1)
	inThree := testDay.AddDate(0, 0, 3)

	st := &fakeStore{bookings: []Booking{
		confirmed("due", "a@example.com", inThree),
		confirmed("wrong-date", "b@example.com", testDay.AddDate(0, 0, 5)),
		{BookingID: "pending", GuestEmail: "c@example.com", PlayDate: inThree, Status: "Pending"},
		{BookingID: "already-sent", GuestEmail: "d@example.com", PlayDate: inThree,
			Status: StatusConfirmed, PreArrivalSentAt: &sentAt},
	}}
	e := newTestEngine(st, &fakeNotifier{})

	due, err := e.SelectDue(context.Background(), PreArrival, testDay, "")
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "due", due[0].BookingID)
}

func TestSelectDueClubFilter(t *testing.T) {
	played := testDay.AddDate(0, 0, -2)
	b1 := confirmed("s1", "a@example.com", played)
	b1.Club = "streamsong"
	b2 := confirmed("other", "b@example.com", played)
	b2.Club = "elsewhere"

	e := newTestEngine(&fakeStore{bookings: []Booking{b1, b2}}, &fakeNotifier{})

	due, err := e.SelectDue(context.Background(), PostPlay, testDay, "streamsong")
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "s1", due[0].BookingID)
}

func TestSelectDueUnknownKind(t *testing.T) {
	e := newTestEngine(&fakeStore{}, &fakeNotifier{})
	_, err := e.SelectDue(context.Background(), Kind("weekly-digest"), testDay, "")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestDispatchOneMarksOnSuccess(t *testing.T) {
	b := confirmed("BK-1", "guest@example.com", testDay.AddDate(0, 0, 3))
	st := &fakeStore{bookings: []Booking{b}}
	n := &fakeNotifier{}
	e := newTestEngine(st, n)

	res := e.DispatchOne(context.Background(), b, PreArrival, false)
	assert.Equal(t, OutcomeSent, res.Outcome)
	require.Len(t, n.calls, 1)
	assert.Equal(t, "d-pre", n.calls[0].templateID)
	assert.Equal(t, []string{"BK-1"}, st.marks)

	// The marker now excludes the booking from a repeat selection.
	due, err := e.SelectDue(context.Background(), PreArrival, testDay, "")
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestDispatchOneMissingRecipient(t *testing.T) {
	b := confirmed("BK-2", "", testDay.AddDate(0, 0, 3))
	st := &fakeStore{bookings: []Booking{b}}
	n := &fakeNotifier{}
	e := newTestEngine(st, n)

	res := e.DispatchOne(context.Background(), b, PreArrival, false)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Contains(t, res.Detail, "no guest email")
	assert.Empty(t, n.calls, "no send may be attempted")
	assert.Empty(t, st.marks)
}

func TestDispatchOneDryRun(t *testing.T) {
	b := confirmed("BK-3", "guest@example.com", testDay.AddDate(0, 0, 3))
	b.TeeTime = "9:00 AM"
	st := &fakeStore{bookings: []Booking{b}}
	n := &fakeNotifier{}
	e := newTestEngine(st, n)

	res := e.DispatchOne(context.Background(), b, PreArrival, true)
	assert.Equal(t, OutcomeWouldSend, res.Outcome)
	assert.Equal(t, "9:00 AM", res.Fields["tee_time"])
	assert.Empty(t, n.calls, "dry run never contacts the provider")
	assert.Empty(t, st.marks, "dry run never mutates the marker")
}

func TestDispatchOneMarkerWriteFailure(t *testing.T) {
	b := confirmed("BK-4", "guest@example.com", testDay.AddDate(0, 0, 3))
	st := &fakeStore{bookings: []Booking{b}, markErr: errors.New("connection reset")}
	e := newTestEngine(st, &fakeNotifier{})

	res := e.DispatchOne(context.Background(), b, PreArrival, false)
	// The email did go out; the outcome stays sent with the risk surfaced.
	assert.Equal(t, OutcomeSent, res.Outcome)
	assert.Contains(t, res.Detail, "marker update failed")
}

func TestProcessBatchFailureIsolation(t *testing.T) {
	inThree := testDay.AddDate(0, 0, 3)
	st := &fakeStore{bookings: []Booking{
		confirmed("ok-1", "a@example.com", inThree),
		confirmed("bad", "broken@example.com", inThree),
		confirmed("ok-2", "c@example.com", inThree),
	}}
	n := &fakeNotifier{failFor: map[string]error{
		"broken@example.com": errors.New("provider rejected: invalid template"),
	}}
	e := newTestEngine(st, n)

	report, err := e.ProcessBatch(context.Background(), PreArrival, testDay, "", false)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Sent)
	assert.Equal(t, 1, report.Failed)
	assert.Len(t, report.Results, 3)

	// The failed booking keeps a nil marker and stays due.
	due, err := e.SelectDue(context.Background(), PreArrival, testDay, "")
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "bad", due[0].BookingID)

	failed := report.Results[1]
	assert.Equal(t, "bad", failed.BookingID)
	assert.Contains(t, failed.Detail, "provider rejected")
}

func TestProcessBatchIdempotent(t *testing.T) {
	inThree := testDay.AddDate(0, 0, 3)
	st := &fakeStore{bookings: []Booking{
		confirmed("r1", "a@example.com", inThree),
		confirmed("r2", "b@example.com", inThree),
	}}
	e := newTestEngine(st, &fakeNotifier{})

	first, err := e.ProcessBatch(context.Background(), PreArrival, testDay, "", false)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Sent)

	second, err := e.ProcessBatch(context.Background(), PreArrival, testDay, "", false)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Sent)
	assert.Empty(t, second.Results)
}

func TestProcessBatchDryRunCounts(t *testing.T) {
	played := testDay.AddDate(0, 0, -2)
	st := &fakeStore{bookings: []Booking{
		confirmed("p1", "a@example.com", played),
		confirmed("p2", "b@example.com", played),
	}}
	n := &fakeNotifier{}
	e := newTestEngine(st, n)

	report, err := e.ProcessBatch(context.Background(), PostPlay, testDay, "", true)
	require.NoError(t, err)
	assert.Equal(t, 2, report.WouldSend)
	assert.Zero(t, report.Sent)
	assert.Empty(t, n.calls)
	assert.Empty(t, st.marks)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("pre-arrival")
	require.NoError(t, err)
	assert.Equal(t, PreArrival, k)

	k, err = ParseKind("post-play")
	require.NoError(t, err)
	assert.Equal(t, PostPlay, k)

	_, err = ParseKind("birthday")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestCampaignTargetDate(t *testing.T) {
	pre := Campaign{Kind: PreArrival, OffsetDays: 3, Direction: 1}
	post := Campaign{Kind: PostPlay, OffsetDays: 2, Direction: -1}

	assert.Equal(t, testDay.AddDate(0, 0, 3), pre.TargetDate(testDay))
	assert.Equal(t, testDay.AddDate(0, 0, -2), post.TargetDate(testDay))
}
