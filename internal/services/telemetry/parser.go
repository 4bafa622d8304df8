package telemetry

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/AppsFlyerKnowledge/appsflyer-sdk-mcp-server/internal/models"
)

// DefaultMarker is the product substring that identifies SDK log lines
// among everything else the device emits.
const DefaultMarker = "AppsFlyer_"

// recordScanLimit caps how many matching lines a filtered query parses.
// Only the most recent matches inside the buffer are considered.
const recordScanLimit = 700

// fallbackDisplayLen is how much of a line is shown as the timestamp
// when no known format matched.
const fallbackDisplayLen = 18

var (
	// Full logcat timestamp: 2025-03-01 10:15:02.123
	fullTimestampRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3}`)
	// Short logcat timestamp (no year): 03-01 10:15:02.123
	shortTimestampRe = regexp.MustCompile(`^\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3}`)
)

// Parser converts raw log lines into structured records.
type Parser struct {
	marker string
	now    func() time.Time
}

// NewParser creates a parser scoped to the given product marker. An
// empty marker falls back to DefaultMarker.
func NewParser(marker string) *Parser {
	if marker == "" {
		marker = DefaultMarker
	}
	return &Parser{marker: marker, now: time.Now}
}

// Marker returns the product marker this parser filters on.
func (p *Parser) Marker() string { return p.marker }

// ParseTimestamp recognizes the two logcat timestamp forms at the start
// of a line. The short form assumes the current year; when that places
// the instant more than 24h in the future the year is decremented,
// which handles logs rolling over a year boundary. When neither form
// matches, the first characters of the line are returned as a display
// fallback with no epoch value.
func (p *Parser) ParseTimestamp(line string) (display string, epochMs int64, ok bool) {
	if m := fullTimestampRe.FindString(line); m != "" {
		t, err := time.ParseInLocation("2006-01-02 15:04:05.000", m, time.Local)
		if err == nil {
			return m, t.UnixMilli(), true
		}
		return m, 0, false
	}

	if m := shortTimestampRe.FindString(line); m != "" {
		now := p.now()
		t, err := time.ParseInLocation("01-02 15:04:05.000", m, time.Local)
		if err != nil {
			return m, 0, false
		}
		t = t.AddDate(now.Year(), 0, 0)
		if t.Sub(now) > 24*time.Hour {
			t = t.AddDate(-1, 0, 0)
		}
		return m, t.UnixMilli(), true
	}

	if len(line) > fallbackDisplayLen {
		return line[:fallbackDisplayLen], 0, false
	}
	return line, 0, false
}

// ExtractJSON locates the first '{' through the last '}' on the line
// and parses that span as JSON. Returns nil on any parse failure or
// when no braces are present.
//
// The span match is greedy: a line carrying two sibling JSON objects
// yields one span covering both, which fails to parse and returns nil.
// Known-imprecise, accepted degradation.
func ExtractJSON(line string) map[string]interface{} {
	start := strings.Index(line, "{")
	if start < 0 {
		return nil
	}
	end := strings.LastIndex(line, "}")
	if end <= start {
		return nil
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(line[start:end+1]), &payload); err != nil {
		return nil
	}
	return payload
}

// Classify returns the marker keyword found on the line, checking the
// attribution record types first and deep-link lines last.
func (p *Parser) Classify(line string) string {
	for _, class := range []string{
		models.ClassConversion + "-",
		models.ClassLaunch + "-",
		models.ClassInApp + "-",
	} {
		if strings.Contains(line, class) {
			return strings.TrimSuffix(class, "-")
		}
	}
	if strings.Contains(line, models.ClassDeepLink) {
		return models.ClassDeepLink
	}
	return ""
}

// Parse converts one raw line into a ParsedRecord. The JSON field is
// nil when extraction failed; filtered queries drop such records.
func (p *Parser) Parse(line string) models.ParsedRecord {
	display, epochMs, ok := p.ParseTimestamp(line)
	return models.ParsedRecord{
		DisplayTimestamp: display,
		TimestampMs:      epochMs,
		HasTimestamp:     ok,
		Classification:   p.Classify(line),
		JSON:             ExtractJSON(line),
		Raw:              line,
	}
}

// FilterRecords scans the given lines (arrival order) for those
// carrying the product marker plus the optional keyword substring,
// keeps the most recent recordScanLimit matches, parses each, and
// drops records whose embedded JSON could not be extracted. Order is
// preserved oldest-to-newest within the truncated window.
func (p *Parser) FilterRecords(lines []string, keyword string) []models.ParsedRecord {
	matched := make([]string, 0, len(lines))
	for _, line := range lines {
		if !strings.Contains(line, p.marker) {
			continue
		}
		if keyword != "" && !strings.Contains(line, keyword) {
			continue
		}
		matched = append(matched, line)
	}

	if len(matched) > recordScanLimit {
		matched = matched[len(matched)-recordScanLimit:]
	}

	records := make([]models.ParsedRecord, 0, len(matched))
	for _, line := range matched {
		rec := p.Parse(line)
		if rec.JSON == nil {
			// Malformed payload: dropped, never surfaced.
			continue
		}
		records = append(records, rec)
	}
	return records
}
