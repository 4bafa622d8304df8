package events

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/AppsFlyerKnowledge/appsflyer-sdk-mcp-server/internal/interfaces"
	"github.com/AppsFlyerKnowledge/appsflyer-sdk-mcp-server/internal/models"
	"github.com/AppsFlyerKnowledge/appsflyer-sdk-mcp-server/internal/services/telemetry"
)

// Log markers for the two halves of an in-app event delivery.
const (
	markerPreparing = "preparing data"
	markerFinished  = "execution finished"
	markerSuccess   = "result: success"
)

// taskTokenRe matches the textual task token the SDK prints when the
// structured task_id field is absent.
var taskTokenRe = regexp.MustCompile(`INAPP-\d+`)

// Correlator verifies that a named in-app event was both staged
// ("preparing data") and confirmed delivered ("execution finished" +
// "result: success"), linked by task id.
type Correlator struct {
	telemetry interfaces.TelemetryService
	logger    arbor.ILogger

	prefix        string
	pollInterval  time.Duration
	pollTimeout   time.Duration
	recencyWindow time.Duration
	now           func() time.Time
}

// NewCorrelator creates an in-app event correlator.
func NewCorrelator(tel interfaces.TelemetryService, logger arbor.ILogger, prefix string, pollInterval, pollTimeout, recencyWindow time.Duration) *Correlator {
	if pollInterval <= 0 {
		pollInterval = telemetry.DefaultPollInterval
	}
	if pollTimeout <= 0 {
		pollTimeout = telemetry.DefaultPollTimeout
	}
	if recencyWindow <= 0 {
		recencyWindow = 5 * time.Minute
	}
	return &Correlator{
		telemetry:     tel,
		logger:        logger,
		prefix:        prefix,
		pollInterval:  pollInterval,
		pollTimeout:   pollTimeout,
		recencyWindow: recencyWindow,
		now:           time.Now,
	}
}

var _ interfaces.EventVerifier = (*Correlator)(nil)

// Correlate scans the lines once in forward order and pairs prepare
// entries with send confirmations. A line without its own task id
// falls back to the last id seen, which covers SDK builds that only
// print the id on the first line of a task.
func (c *Correlator) Correlate(lines []string) []models.CorrelatedEvent {
	lastSeenTaskID := ""
	prepared := make(map[string]*models.PreparedEvent)
	evidence := make(map[string][]string)
	sent := make(map[string]bool)
	var order []string

	for _, line := range lines {
		payload := telemetry.ExtractJSON(line)

		taskID := extractTaskID(line, payload)
		if taskID != "" {
			lastSeenTaskID = taskID
		} else {
			taskID = lastSeenTaskID
		}
		if taskID == "" {
			continue
		}

		if strings.Contains(line, markerPreparing) && payload != nil {
			name, _ := payload["eventName"].(string)
			if name == "" {
				name, _ = payload["event_name"].(string)
			}
			if _, seen := prepared[taskID]; !seen {
				order = append(order, taskID)
			}
			prepared[taskID] = &models.PreparedEvent{
				TaskID:    taskID,
				Payload:   payload,
				EventName: name,
			}
			// A re-prepare is a fresh delivery attempt: any earlier
			// confirmation belonged to the replaced payload.
			delete(sent, taskID)
			evidence[taskID] = []string{line}
		}

		lower := strings.ToLower(line)
		if strings.Contains(lower, markerFinished) && strings.Contains(lower, markerSuccess) {
			sent[taskID] = true
			evidence[taskID] = append(evidence[taskID], line)
		}
	}

	out := make([]models.CorrelatedEvent, 0, len(order))
	for _, taskID := range order {
		ev := models.CorrelatedEvent{
			PreparedEvent: *prepared[taskID],
			Sent:          sent[taskID],
			Status:        models.EventPrepared,
			Evidence:      evidence[taskID],
		}
		if ev.Sent {
			ev.Status = models.EventSent
		}
		out = append(out, ev)
	}
	return out
}

// VerifyEvent answers whether the named event was delivered recently:
// correlated events are filtered to task ids seen in recent records,
// preferring the most recent sent match, then the most recent prepared
// match.
func (c *Correlator) VerifyEvent(ctx context.Context, deviceID, eventName string) *models.EventVerdict {
	if err := c.telemetry.EnsureStreaming(ctx, c.prefix, deviceID); err != nil {
		return &models.EventVerdict{Reason: err.Error()}
	}
	telemetry.WaitForRecords(ctx, c.telemetry, models.ClassInApp, c.pollInterval, c.pollTimeout)

	correlated := c.Correlate(c.telemetry.RawLines())
	recentTasks := c.recentTaskIDs()

	var bestSent, bestPrepared *models.CorrelatedEvent
	for i := range correlated {
		ev := &correlated[i]
		if eventName != "" && ev.EventName != eventName {
			continue
		}
		if !recentTasks[ev.TaskID] {
			continue
		}
		if ev.Sent {
			bestSent = ev
		} else {
			bestPrepared = ev
		}
	}

	switch {
	case bestSent != nil:
		return &models.EventVerdict{Found: true, Event: bestSent}
	case bestPrepared != nil:
		return &models.EventVerdict{
			Found:  true,
			Event:  bestPrepared,
			Reason: "event was prepared but no send confirmation was observed",
		}
	default:
		return &models.EventVerdict{
			Reason: fmt.Sprintf("no recent in-app event named %q was observed; trigger the event on the device and retry", eventName),
		}
	}
}

// recentTaskIDs collects task ids appearing in in-app or deep-link
// records inside the recency window.
func (c *Correlator) recentTaskIDs() map[string]bool {
	cutoff := c.now().Add(-c.recencyWindow).UnixMilli()
	recent := make(map[string]bool)
	for _, rec := range c.telemetry.FilterRecords("") {
		if rec.Classification != models.ClassInApp && rec.Classification != models.ClassDeepLink {
			continue
		}
		if !rec.HasTimestamp || rec.TimestampMs < cutoff {
			continue
		}
		if id := extractTaskID(rec.Raw, rec.JSON); id != "" {
			recent[id] = true
		}
	}
	return recent
}

// extractTaskID pulls a task identifier from the structured payload
// (task_id, then taskId) or from the textual INAPP-<digits> token.
func extractTaskID(line string, payload map[string]interface{}) string {
	if payload != nil {
		if id, ok := payload["task_id"].(string); ok && id != "" {
			return id
		}
		if id, ok := payload["taskId"].(string); ok && id != "" {
			return id
		}
	}
	return taskTokenRe.FindString(line)
}
