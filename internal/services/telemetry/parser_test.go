package telemetry

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AppsFlyerKnowledge/appsflyer-sdk-mcp-server/internal/models"
)

// fixedParser returns a parser whose clock is pinned to now.
func fixedParser(now time.Time) *Parser {
	p := NewParser("")
	p.now = func() time.Time { return now }
	return p
}

func TestParseTimestampFullForm(t *testing.T) {
	p := NewParser("")

	display, epochMs, ok := p.ParseTimestamp("2025-03-01 10:15:02.123 AppsFlyer_6.12 some message")
	require.True(t, ok)
	assert.Equal(t, "2025-03-01 10:15:02.123", display)

	want := time.Date(2025, 3, 1, 10, 15, 2, 123_000_000, time.Local).UnixMilli()
	assert.Equal(t, want, epochMs)
}

func TestParseTimestampShortFormCurrentYear(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)
	p := fixedParser(now)

	_, epochMs, ok := p.ParseTimestamp("06-14 09:30:00.500 message")
	require.True(t, ok)

	want := time.Date(2025, 6, 14, 9, 30, 0, 500_000_000, time.Local).UnixMilli()
	assert.Equal(t, want, epochMs)
}

func TestParseTimestampShortFormYearRollover(t *testing.T) {
	// Reading December logs on January 2nd: assuming the current year
	// would place the instant ~11 months in the future, so the year is
	// decremented.
	now := time.Date(2026, 1, 2, 0, 30, 0, 0, time.Local)
	p := fixedParser(now)

	_, epochMs, ok := p.ParseTimestamp("12-31 23:59:00.000 rollover line")
	require.True(t, ok)

	want := time.Date(2025, 12, 31, 23, 59, 0, 0, time.Local).UnixMilli()
	assert.Equal(t, want, epochMs)
}

func TestParseTimestampShortFormWithin24h(t *testing.T) {
	// Less than 24h ahead of now stays in the current year: device and
	// host clocks are rarely in perfect sync.
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)
	p := fixedParser(now)

	_, epochMs, ok := p.ParseTimestamp("06-16 10:00:00.000 slightly ahead")
	require.True(t, ok)

	want := time.Date(2025, 6, 16, 10, 0, 0, 0, time.Local).UnixMilli()
	assert.Equal(t, want, epochMs)
}

func TestParseTimestampFallback(t *testing.T) {
	p := NewParser("")

	tests := []struct {
		name        string
		line        string
		wantDisplay string
	}{
		{"no timestamp", "AppsFlyer_6.12: CONVERSION-{}", "AppsFlyer_6.12: CO"},
		{"short line", "no stamp", "no stamp"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			display, epochMs, ok := p.ParseTimestamp(tt.line)
			assert.False(t, ok)
			assert.Equal(t, tt.wantDisplay, display)
			assert.Zero(t, epochMs)
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		line string
		want map[string]interface{}
	}{
		{
			"simple payload",
			`03-01 10:00:00.000 AppsFlyer_6.12: LAUNCH-1: {"status":"FOUND","c":"summer"}`,
			map[string]interface{}{"status": "FOUND", "c": "summer"},
		},
		{
			"no braces",
			"plain text line",
			nil,
		},
		{
			"unbalanced",
			"prefix { not json",
			nil,
		},
		{
			"two sibling objects span greedily and fail",
			`{"a":1} and {"b":2}`,
			nil,
		},
		{
			"nested object survives the greedy span",
			`prefix {"outer":{"inner":true}} suffix`,
			map[string]interface{}{"outer": map[string]interface{}{"inner": true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.line))
		})
	}
}

func TestExtractJSONIdempotent(t *testing.T) {
	payload := ExtractJSON(`ts {"deep_link_value":"page","af_sub1":"1","n":3.5}`)
	require.NotNil(t, payload)

	encoded, err := json.Marshal(payload)
	require.NoError(t, err)

	again := ExtractJSON(string(encoded))
	assert.Equal(t, payload, again)
}

func TestClassify(t *testing.T) {
	p := NewParser("")

	tests := []struct {
		line string
		want string
	}{
		{"AppsFlyer_6.12: CONVERSION-12: message", models.ClassConversion},
		{"AppsFlyer_6.12: LAUNCH-4: message", models.ClassLaunch},
		{"AppsFlyer_6.12: INAPP-7: message", models.ClassInApp},
		{"AppsFlyer_6.12: deepLink resolved", models.ClassDeepLink},
		{"AppsFlyer_6.12: plain", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, p.Classify(tt.line), tt.line)
	}
}

func TestFilterRecordsDropsMalformedAndNonMarker(t *testing.T) {
	p := NewParser("AppsFlyer_")
	lines := []string{
		`03-01 10:00:00.000 AppsFlyer_6.12: deepLink {"status":"FOUND"}`,
		`03-01 10:00:01.000 OtherTag: deepLink {"status":"FOUND"}`,       // no marker
		`03-01 10:00:02.000 AppsFlyer_6.12: deepLink { broken json`,     // malformed: dropped
		`03-01 10:00:03.000 AppsFlyer_6.12: CONVERSION-1: {"af_status":"Organic"}`,
	}

	all := p.FilterRecords(lines, "")
	require.Len(t, all, 2)
	assert.Equal(t, models.ClassDeepLink, all[0].Classification)
	assert.Equal(t, models.ClassConversion, all[1].Classification)

	// Invariant: JSON is never nil for returned records.
	for _, rec := range all {
		require.NotNil(t, rec.JSON)
	}

	deepLinks := p.FilterRecords(lines, "deepLink")
	require.Len(t, deepLinks, 1)
	assert.Equal(t, "FOUND", deepLinks[0].JSON["status"])
}

func TestFilterRecordsEmptyBuffer(t *testing.T) {
	p := NewParser("")
	assert.Empty(t, p.FilterRecords(nil, ""))
	assert.Empty(t, p.FilterRecords([]string{}, "deepLink"))
}

func TestFilterRecordsTruncatesToMostRecent(t *testing.T) {
	p := NewParser("AppsFlyer_")

	var lines []string
	for i := 0; i < recordScanLimit+50; i++ {
		lines = append(lines, fmt.Sprintf(`03-01 10:00:00.000 AppsFlyer_6.12: {"i":%d}`, i))
	}

	records := p.FilterRecords(lines, "")
	require.Len(t, records, recordScanLimit)

	// Oldest-to-newest order within the truncated window.
	first := records[0].JSON["i"].(float64)
	last := records[len(records)-1].JSON["i"].(float64)
	assert.Equal(t, float64(50), first)
	assert.Equal(t, float64(recordScanLimit+49), last)
	assert.True(t, strings.Contains(records[0].Raw, `"i":50`))
}
