package verification

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/AppsFlyerKnowledge/appsflyer-sdk-mcp-server/internal/interfaces"
	"github.com/AppsFlyerKnowledge/appsflyer-sdk-mcp-server/internal/models"
	"github.com/AppsFlyerKnowledge/appsflyer-sdk-mcp-server/internal/services/telemetry"
)

// ConversionChecker verifies install attribution from CONVERSION
// records: the SDK reports af_status (Organic / Non-organic) plus
// media source and campaign on the first conversion after install.
type ConversionChecker struct {
	telemetry interfaces.TelemetryService
	logger    arbor.ILogger

	prefix        string
	pollInterval  time.Duration
	pollTimeout   time.Duration
	recencyWindow time.Duration
	now           func() time.Time
}

// NewConversionChecker creates an install-attribution checker with the
// same bounded-wait behavior as the deep-link verifier.
func NewConversionChecker(tel interfaces.TelemetryService, logger arbor.ILogger, prefix string, pollInterval, pollTimeout, recencyWindow time.Duration) *ConversionChecker {
	if pollInterval <= 0 {
		pollInterval = telemetry.DefaultPollInterval
	}
	if pollTimeout <= 0 {
		pollTimeout = telemetry.DefaultPollTimeout
	}
	if recencyWindow <= 0 {
		recencyWindow = DefaultRecencyWindow
	}
	return &ConversionChecker{
		telemetry:     tel,
		logger:        logger,
		prefix:        prefix,
		pollInterval:  pollInterval,
		pollTimeout:   pollTimeout,
		recencyWindow: recencyWindow,
		now:           time.Now,
	}
}

var _ interfaces.ConversionVerifier = (*ConversionChecker)(nil)

// VerifyInstall looks for the newest recent CONVERSION record and
// reports the attribution it carries. Like deep-link verification, a
// failed check is a diagnostic result, not an error.
func (c *ConversionChecker) VerifyInstall(ctx context.Context, deviceID string) *models.ConversionVerdict {
	if err := c.telemetry.EnsureStreaming(ctx, c.prefix, deviceID); err != nil {
		return &models.ConversionVerdict{Reason: err.Error()}
	}

	records := telemetry.WaitForRecords(ctx, c.telemetry, models.ClassConversion, c.pollInterval, c.pollTimeout)
	cutoff := c.now().Add(-c.recencyWindow).UnixMilli()

	var located *models.ParsedRecord
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].HasTimestamp && records[i].TimestampMs >= cutoff {
			located = &records[i]
			break
		}
	}
	if located == nil {
		return &models.ConversionVerdict{
			Reason: fmt.Sprintf("%v: no conversion records within the last %s; launch the app and retry", models.ErrStaleOrMissingEvidence, c.recencyWindow),
		}
	}

	status := normalizeValue(located.JSON["af_status"])
	mediaSource := normalizeValue(located.JSON["media_source"])
	if mediaSource == "" {
		mediaSource = normalizeValue(located.JSON["pid"])
	}
	campaign := normalizeValue(located.JSON["campaign"])
	if campaign == "" {
		campaign = normalizeValue(located.JSON["c"])
	}
	firstLaunch := false
	if b, ok := located.JSON["is_first_launch"].(bool); ok {
		firstLaunch = b
	}

	verdict := &models.ConversionVerdict{
		Pass:            status != "",
		Status:          status,
		MediaSource:     mediaSource,
		Campaign:        campaign,
		FirstLaunch:     firstLaunch,
		Record:          located.JSON,
		RecordTimestamp: located.DisplayTimestamp,
	}
	if !verdict.Pass {
		verdict.Reason = "conversion record carries no af_status; attribution not yet resolved"
	}

	c.logger.Debug().
		Bool("pass", verdict.Pass).
		Str("af_status", status).
		Msg("Install attribution check complete")

	return verdict
}
