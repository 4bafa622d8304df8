package telemetry

import (
	"context"
	"time"

	"github.com/AppsFlyerKnowledge/appsflyer-sdk-mcp-server/internal/interfaces"
	"github.com/AppsFlyerKnowledge/appsflyer-sdk-mcp-server/internal/models"
)

// Default bounded-wait parameters for verification reads: poll the
// buffer in short increments up to a ceiling, then proceed with
// whatever is present.
const (
	DefaultPollInterval = 200 * time.Millisecond
	DefaultPollTimeout  = 2 * time.Second
)

// WaitForRecords polls the filtered-record query until at least one
// record appears or the timeout elapses. There is no cancellation
// beyond ctx: a timed-out wait is not an error, the caller proceeds
// with the (possibly empty) result.
func WaitForRecords(ctx context.Context, svc interfaces.TelemetryService, keyword string, interval, timeout time.Duration) []models.ParsedRecord {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if timeout <= 0 {
		timeout = DefaultPollTimeout
	}

	deadline := time.Now().Add(timeout)
	for {
		records := svc.FilterRecords(keyword)
		if len(records) > 0 || time.Now().After(deadline) {
			return records
		}
		select {
		case <-ctx.Done():
			return records
		case <-time.After(interval):
		}
	}
}
