package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimbobirecode/streamsong-dashboard/internal/journey"
)

func TestMarkerColumn(t *testing.T) {
	col, err := markerColumn(journey.PreArrival)
	require.NoError(t, err)
	assert.Equal(t, "pre_arrival_email_sent_at", col)

	col, err = markerColumn(journey.PostPlay)
	require.NoError(t, err)
	assert.Equal(t, "post_play_email_sent_at", col)

	_, err = markerColumn(journey.Kind("weekly"))
	assert.ErrorIs(t, err, journey.ErrUnknownKind)
}

func TestDueSQL(t *testing.T) {
	playDate := time.Date(2026, time.April, 13, 0, 0, 0, 0, time.UTC)

	sql, args, err := dueSQL(journey.DueQuery{Kind: journey.PreArrival, PlayDate: playDate})
	require.NoError(t, err)
	assert.Contains(t, sql, "pre_arrival_email_sent_at IS NULL")
	assert.Contains(t, sql, "status = $1")
	assert.Contains(t, sql, "date = $2")
	assert.NotContains(t, sql, "club = $")
	assert.Equal(t, []any{journey.StatusConfirmed, playDate}, args)
}

func TestDueSQLWithClub(t *testing.T) {
	playDate := time.Date(2026, time.April, 8, 0, 0, 0, 0, time.UTC)

	sql, args, err := dueSQL(journey.DueQuery{
		Kind:     journey.PostPlay,
		PlayDate: playDate,
		Club:     "streamsong",
	})
	require.NoError(t, err)
	assert.Contains(t, sql, "post_play_email_sent_at IS NULL")
	assert.Contains(t, sql, "club = $3")
	assert.Equal(t, []any{journey.StatusConfirmed, playDate, "streamsong"}, args)
}

func TestDueSQLUnknownKind(t *testing.T) {
	_, _, err := dueSQL(journey.DueQuery{Kind: journey.Kind("nope")})
	assert.ErrorIs(t, err, journey.ErrUnknownKind)
}
