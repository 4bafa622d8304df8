package models

// Log line classification markers emitted by the SDK. Classification is
// inferred from literal substring presence, in this priority order.
const (
	ClassConversion = "CONVERSION"
	ClassLaunch     = "LAUNCH"
	ClassInApp      = "INAPP"
	ClassDeepLink   = "deepLink"
)

// ParsedRecord is a structured view of one raw log line. Records are
// derived on demand from the log buffer and never stored; JSON is
// guaranteed non-nil for any record returned by a filtering query.
type ParsedRecord struct {
	// DisplayTimestamp is the matched timestamp prefix of the line, or a
	// truncated fallback when no timestamp format matched.
	DisplayTimestamp string `json:"display_timestamp"`

	// TimestampMs is the epoch-millisecond instant of the line. Zero when
	// the timestamp could not be parsed; check HasTimestamp.
	TimestampMs int64 `json:"timestamp_ms,omitempty"`

	// HasTimestamp reports whether TimestampMs carries a parsed instant.
	HasTimestamp bool `json:"has_timestamp"`

	// Classification is the marker keyword found on the line
	// (CONVERSION, LAUNCH, INAPP, deepLink) or empty.
	Classification string `json:"classification,omitempty"`

	// JSON is the embedded payload extracted from the line.
	JSON map[string]interface{} `json:"json"`

	// Raw is the original log line.
	Raw string `json:"-"`
}
