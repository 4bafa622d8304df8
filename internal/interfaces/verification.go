package interfaces

import (
	"context"

	"github.com/AppsFlyerKnowledge/appsflyer-sdk-mcp-server/internal/models"
)

// ExpectedStateStore holds the most recently resolved OneLink payload.
// Single writer per update, multiple readers; last-write-wins with no
// history.
type ExpectedStateStore interface {
	// Set records the payload resolved from a OneLink URL, stamping the
	// capture time.
	Set(sourceURL string, payload map[string]interface{})

	// Get returns the latest expected data, or ok=false when no OneLink
	// has been resolved yet.
	Get() (data *models.ExpectedDeepLinkData, ok bool)
}

// DeepLinkVerifier reconciles observed deep-link records against the
// expected state and produces a pass/fail verdict with per-field
// diagnostics. Verification failures are terminal diagnostic results,
// not errors.
type DeepLinkVerifier interface {
	Verify(ctx context.Context, deviceID string) *models.DeepLinkVerdict
}

// ConversionVerifier checks that install attribution was reported by
// the SDK, from CONVERSION records in the buffer.
type ConversionVerifier interface {
	VerifyInstall(ctx context.Context, deviceID string) *models.ConversionVerdict
}

// EventVerifier determines whether a named in-app event was both
// prepared and confirmed sent, correlated by task id.
type EventVerifier interface {
	VerifyEvent(ctx context.Context, deviceID, eventName string) *models.EventVerdict
}
