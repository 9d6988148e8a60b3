// AngelaMos | 2026
// dispatcher_test.go

package syncer

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tlogandesigns/site-visitor-dash/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testLead() Lead {
	return Lead{
		ID:          "v-1",
		BuyerName:   "Mary Jane Watson",
		BuyerPhone:  "555-0142",
		BuyerEmail:  "mj@example.com",
		Represented: true,
		AgentName:   "Pat Lee",
		AgentCincID: "cinc-77",
		Site:        "Maple Grove",
		CreatedAt:   time.Date(2026, 4, 2, 10, 30, 0, 0, time.UTC),
	}
}

func TestDispatch_Success(t *testing.T) {
	t.Parallel()

	var received Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewDispatcher(config.SyncConfig{
		WebhookURL: srv.URL,
		Timeout:    5 * time.Second,
	}, discardLogger())

	outcome := d.Dispatch(context.Background(), testLead())

	assert.True(t, outcome.OK)
	assert.Equal(t, http.StatusOK, outcome.ProviderStatus)
	assert.Empty(t, outcome.Err)

	assert.Equal(t, "Mary", received.FirstName)
	assert.Equal(t, "Jane Watson", received.LastName)
	assert.Equal(t, "Mary Jane Watson", received.FullName)
	assert.Equal(t, "Yes", received.Represented)
	assert.Equal(t, "New Homes Lead Tracker", received.Source)
	assert.Equal(t, "cinc-77", received.AgentCincID)
	assert.Equal(t, "2026-04-02T10:30:00Z", received.VisitDate)
}

func TestDispatch_RejectedStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	d := NewDispatcher(config.SyncConfig{
		WebhookURL: srv.URL,
		Timeout:    5 * time.Second,
	}, discardLogger())

	outcome := d.Dispatch(context.Background(), testLead())

	assert.False(t, outcome.OK)
	assert.Equal(t, http.StatusBadGateway, outcome.ProviderStatus)
	assert.Contains(t, outcome.Err, "502")
}

func TestDispatch_RedirectClassStillCountsAsDelivered(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	d := NewDispatcher(config.SyncConfig{
		WebhookURL: srv.URL,
		Timeout:    5 * time.Second,
	}, discardLogger())

	outcome := d.Dispatch(context.Background(), testLead())
	assert.True(t, outcome.OK)
}

func TestDispatch_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	d := NewDispatcher(config.SyncConfig{
		WebhookURL: srv.URL,
		Timeout:    time.Second,
	}, discardLogger())

	outcome := d.Dispatch(context.Background(), testLead())

	assert.False(t, outcome.OK)
	assert.NotEmpty(t, outcome.Err)
	assert.Zero(t, outcome.ProviderStatus)
}

func TestDispatch_NotConfigured(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(config.SyncConfig{Timeout: time.Second}, discardLogger())

	outcome := d.Dispatch(context.Background(), testLead())

	assert.False(t, outcome.OK)
	assert.Equal(t, "sync webhook not configured", outcome.Err)
}

func TestBuildPayload_Defaults(t *testing.T) {
	t.Parallel()

	p := BuildPayload(Lead{
		BuyerName:  "Cher",
		BuyerPhone: "555-0100",
	})

	assert.Equal(t, "Cher", p.FirstName)
	assert.Empty(t, p.LastName)
	assert.Equal(t, "No", p.Represented)
	assert.Empty(t, p.Email)
	assert.Empty(t, p.AgentName)
	assert.NotEmpty(t, p.VisitDate)
	assert.NotEmpty(t, p.Timestamp)
}

func TestSplitName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		full, first, last string
	}{
		{"Mary Jane Watson", "Mary", "Jane Watson"},
		{"Cher", "Cher", ""},
		{"", "", ""},
		{"  padded   name  ", "padded", "name"},
	}

	for _, tc := range cases {
		first, last := splitName(tc.full)
		assert.Equal(t, tc.first, first, tc.full)
		assert.Equal(t, tc.last, last, tc.full)
	}
}
