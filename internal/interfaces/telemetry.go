package interfaces

import (
	"context"

	"github.com/AppsFlyerKnowledge/appsflyer-sdk-mcp-server/internal/models"
)

// TelemetryService owns the device log stream and the shared line
// buffer, and answers filtered structured-record queries over it.
// This interface abstracts the adb-backed implementation so verifiers
// can be tested against an in-memory double.
type TelemetryService interface {
	// EnsureStreaming idempotently starts or reuses a log-tailing
	// connection scoped to the given tag prefix and optional device
	// serial. Returns models.ErrStreamUnavailable (wrapped) when no
	// device is reachable or the log tool cannot be started. Repeated
	// calls with the same prefix/device never spawn duplicate streams.
	EnsureStreaming(ctx context.Context, prefix, deviceID string) error

	// FilterRecords scans the buffer for lines carrying the product
	// marker plus the optional keyword substring, parses the most
	// recent matches into structured records, and drops any whose
	// embedded JSON cannot be extracted. Order is preserved
	// oldest-to-newest within the truncated window.
	FilterRecords(keyword string) []models.ParsedRecord

	// RawLines returns a snapshot of the buffered raw lines in arrival
	// order, for scans that need the unparsed text.
	RawLines() []string

	// Stop tears down all active streams. Called at process exit.
	Stop()
}
