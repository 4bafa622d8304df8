package events

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/AppsFlyerKnowledge/appsflyer-sdk-mcp-server/internal/models"
)

// fakeTelemetry feeds canned lines and records into the correlator.
type fakeTelemetry struct {
	lines     []string
	records   []models.ParsedRecord
	streamErr error
}

func (f *fakeTelemetry) EnsureStreaming(ctx context.Context, prefix, deviceID string) error {
	return f.streamErr
}

func (f *fakeTelemetry) FilterRecords(keyword string) []models.ParsedRecord {
	return f.records
}

func (f *fakeTelemetry) RawLines() []string { return f.lines }

func (f *fakeTelemetry) Stop() {}

func newTestCorrelator(tel *fakeTelemetry) *Correlator {
	return NewCorrelator(tel, arbor.NewLogger(), "AppsFlyer_", time.Millisecond, 2*time.Millisecond, 5*time.Minute)
}

// inappRecord builds a recent INAPP record carrying a task id.
func inappRecord(taskID string) models.ParsedRecord {
	return models.ParsedRecord{
		TimestampMs:    time.Now().UnixMilli(),
		HasTimestamp:   true,
		Classification: models.ClassInApp,
		JSON:           map[string]interface{}{"task_id": taskID},
		Raw:            fmt.Sprintf("AppsFlyer_6.12: %s record", taskID),
	}
}

func TestCorrelatePreparedAndSent(t *testing.T) {
	c := newTestCorrelator(&fakeTelemetry{})

	lines := []string{
		`AppsFlyer_6.12: INAPP-7: preparing data: {"eventName":"purchase","af_revenue":9.99}`,
		`AppsFlyer_6.12: INAPP-7: execution finished, result: SUCCESS`,
	}

	events := c.Correlate(lines)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, "INAPP-7", ev.TaskID)
	assert.Equal(t, "purchase", ev.EventName)
	assert.True(t, ev.Sent)
	assert.Equal(t, models.EventSent, ev.Status)
	assert.Len(t, ev.Evidence, 2)
}

func TestCorrelatePreparedWithoutConfirmation(t *testing.T) {
	c := newTestCorrelator(&fakeTelemetry{})

	lines := []string{
		`AppsFlyer_6.12: INAPP-8: preparing data: {"event_name":"signup"}`,
	}

	events := c.Correlate(lines)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, "INAPP-8", ev.TaskID)
	assert.Equal(t, "signup", ev.EventName)
	assert.False(t, ev.Sent)
	assert.Equal(t, models.EventPrepared, ev.Status)
}

func TestCorrelateTaskIDFromJSONField(t *testing.T) {
	c := newTestCorrelator(&fakeTelemetry{})

	lines := []string{
		`AppsFlyer_6.12: preparing data: {"taskId":"INAPP-42","eventName":"level_up"}`,
		`AppsFlyer_6.12: task {"task_id":"INAPP-42"} execution finished, result: success`,
	}

	events := c.Correlate(lines)
	require.Len(t, events, 1)
	assert.Equal(t, "INAPP-42", events[0].TaskID)
	assert.True(t, events[0].Sent)
}

func TestCorrelateLastSeenTaskIDFallback(t *testing.T) {
	// The confirmation line has no task id of its own; it attaches to
	// the last id seen in the scan.
	c := newTestCorrelator(&fakeTelemetry{})

	lines := []string{
		`AppsFlyer_6.12: INAPP-9: preparing data: {"eventName":"add_to_cart"}`,
		`AppsFlyer_6.12: execution finished, result: success`,
	}

	events := c.Correlate(lines)
	require.Len(t, events, 1)
	assert.True(t, events[0].Sent)
}

func TestCorrelateConfirmationForDifferentTask(t *testing.T) {
	c := newTestCorrelator(&fakeTelemetry{})

	lines := []string{
		`AppsFlyer_6.12: INAPP-1: preparing data: {"eventName":"purchase"}`,
		`AppsFlyer_6.12: INAPP-2: execution finished, result: success`,
	}

	events := c.Correlate(lines)
	require.Len(t, events, 1)
	assert.False(t, events[0].Sent, "confirmation for another task must not mark this one sent")
}

func TestCorrelatePrepareOverwrites(t *testing.T) {
	c := newTestCorrelator(&fakeTelemetry{})

	lines := []string{
		`AppsFlyer_6.12: INAPP-3: preparing data: {"eventName":"first"}`,
		`AppsFlyer_6.12: INAPP-3: preparing data: {"eventName":"second"}`,
	}

	events := c.Correlate(lines)
	require.Len(t, events, 1)
	assert.Equal(t, "second", events[0].EventName)
}

func TestCorrelateRePrepareResetsConfirmation(t *testing.T) {
	c := newTestCorrelator(&fakeTelemetry{})

	lines := []string{
		`AppsFlyer_6.12: INAPP-4: preparing data: {"eventName":"retry"}`,
		`AppsFlyer_6.12: INAPP-4: execution finished, result: success`,
		`AppsFlyer_6.12: INAPP-4: preparing data: {"eventName":"retry"}`,
	}

	events := c.Correlate(lines)
	require.Len(t, events, 1)
	assert.False(t, events[0].Sent, "confirmation of the replaced attempt must not carry over")
	assert.Equal(t, models.EventPrepared, events[0].Status)
	require.Len(t, events[0].Evidence, 1)
	assert.Contains(t, events[0].Evidence[0], "preparing data")
}

func TestVerifyEventSent(t *testing.T) {
	tel := &fakeTelemetry{
		lines: []string{
			`AppsFlyer_6.12: INAPP-7: preparing data: {"eventName":"purchase"}`,
			`AppsFlyer_6.12: INAPP-7: execution finished, result: SUCCESS`,
		},
		records: []models.ParsedRecord{inappRecord("INAPP-7")},
	}

	verdict := newTestCorrelator(tel).VerifyEvent(context.Background(), "", "purchase")
	require.True(t, verdict.Found)
	assert.Equal(t, models.EventSent, verdict.Event.Status)
}

func TestVerifyEventPreparedOnly(t *testing.T) {
	tel := &fakeTelemetry{
		lines: []string{
			`AppsFlyer_6.12: INAPP-8: preparing data: {"eventName":"signup"}`,
		},
		records: []models.ParsedRecord{inappRecord("INAPP-8")},
	}

	verdict := newTestCorrelator(tel).VerifyEvent(context.Background(), "", "signup")
	require.True(t, verdict.Found)
	assert.False(t, verdict.Event.Sent)
	assert.Equal(t, models.EventPrepared, verdict.Event.Status)
	assert.NotEmpty(t, verdict.Reason)
}

func TestVerifyEventPrefersSentOverPrepared(t *testing.T) {
	tel := &fakeTelemetry{
		lines: []string{
			`AppsFlyer_6.12: INAPP-1: preparing data: {"eventName":"purchase"}`,
			`AppsFlyer_6.12: INAPP-1: execution finished, result: success`,
			`AppsFlyer_6.12: INAPP-2: preparing data: {"eventName":"purchase"}`,
		},
		records: []models.ParsedRecord{inappRecord("INAPP-1"), inappRecord("INAPP-2")},
	}

	verdict := newTestCorrelator(tel).VerifyEvent(context.Background(), "", "purchase")
	require.True(t, verdict.Found)
	assert.Equal(t, "INAPP-1", verdict.Event.TaskID)
	assert.True(t, verdict.Event.Sent)
}

func TestVerifyEventOutsideRecencyWindow(t *testing.T) {
	stale := inappRecord("INAPP-5")
	stale.TimestampMs = time.Now().Add(-time.Hour).UnixMilli()

	tel := &fakeTelemetry{
		lines: []string{
			`AppsFlyer_6.12: INAPP-5: preparing data: {"eventName":"purchase"}`,
			`AppsFlyer_6.12: INAPP-5: execution finished, result: success`,
		},
		records: []models.ParsedRecord{stale},
	}

	verdict := newTestCorrelator(tel).VerifyEvent(context.Background(), "", "purchase")
	assert.False(t, verdict.Found)
}

func TestVerifyEventNameMismatch(t *testing.T) {
	tel := &fakeTelemetry{
		lines: []string{
			`AppsFlyer_6.12: INAPP-6: preparing data: {"eventName":"purchase"}`,
		},
		records: []models.ParsedRecord{inappRecord("INAPP-6")},
	}

	verdict := newTestCorrelator(tel).VerifyEvent(context.Background(), "", "signup")
	assert.False(t, verdict.Found)
	assert.Contains(t, verdict.Reason, "signup")
}
