package mailer

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimbobirecode/streamsong-dashboard/internal/journey"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewUnconfigured(t *testing.T) {
	assert.Nil(t, New("", "golf@streamsong.test", "Streamsong", discardLogger()))
	assert.Nil(t, New("SG.key", "", "Streamsong", discardLogger()))
}

func TestSendNilSender(t *testing.T) {
	var s *Sender
	err := s.Send(context.Background(), "guest@example.com", "d-1", journey.Fields{})
	assert.ErrorIs(t, err, journey.ErrNotConfigured)
}

func TestSendEmptyTemplate(t *testing.T) {
	s := New("SG.key", "golf@streamsong.test", "Streamsong", discardLogger())
	err := s.Send(context.Background(), "guest@example.com", "", journey.Fields{})
	assert.ErrorIs(t, err, journey.ErrNotConfigured)
}

func TestSendAccepted(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s := New("SG.key", "golf@streamsong.test", "Streamsong", discardLogger())
	s.client.Request.BaseURL = srv.URL

	err := s.Send(context.Background(), "guest@example.com", "d-pre",
		journey.Fields{"tee_time": "9:00 AM"})
	require.NoError(t, err)

	assert.Equal(t, "d-pre", got["template_id"])
	personalizations := got["personalizations"].([]any)
	require.Len(t, personalizations, 1)
	p := personalizations[0].(map[string]any)
	assert.Equal(t, "9:00 AM", p["dynamic_template_data"].(map[string]any)["tee_time"])
}

func TestSendRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"errors":[{"message":"The provided authorization grant is invalid"}]}`)
	}))
	defer srv.Close()

	s := New("SG.bad", "golf@streamsong.test", "Streamsong", discardLogger())
	s.client.Request.BaseURL = srv.URL

	err := s.Send(context.Background(), "guest@example.com", "d-pre", journey.Fields{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Contains(t, err.Error(), "authorization grant is invalid")
}
