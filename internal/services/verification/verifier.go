package verification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/AppsFlyerKnowledge/appsflyer-sdk-mcp-server/internal/interfaces"
	"github.com/AppsFlyerKnowledge/appsflyer-sdk-mcp-server/internal/models"
	"github.com/AppsFlyerKnowledge/appsflyer-sdk-mcp-server/internal/services/telemetry"
)

// DefaultRecencyWindow bounds how old a record may be and still count
// as evidence for the current verification attempt.
const DefaultRecencyWindow = 5 * time.Minute

// Verifier reconciles observed deep-link records against the expected
// state. One Verify call is one self-contained attempt; nothing
// persists across calls.
type Verifier struct {
	telemetry interfaces.TelemetryService
	store     interfaces.ExpectedStateStore
	logger    arbor.ILogger

	prefix        string
	pollInterval  time.Duration
	pollTimeout   time.Duration
	recencyWindow time.Duration
	now           func() time.Time
}

// NewVerifier creates a deep-link verifier. prefix scopes the log
// stream; zero durations fall back to the defaults.
func NewVerifier(tel interfaces.TelemetryService, store interfaces.ExpectedStateStore, logger arbor.ILogger, prefix string, pollInterval, pollTimeout, recencyWindow time.Duration) *Verifier {
	if pollInterval <= 0 {
		pollInterval = telemetry.DefaultPollInterval
	}
	if pollTimeout <= 0 {
		pollTimeout = telemetry.DefaultPollTimeout
	}
	if recencyWindow <= 0 {
		recencyWindow = DefaultRecencyWindow
	}
	return &Verifier{
		telemetry:     tel,
		store:         store,
		logger:        logger,
		prefix:        prefix,
		pollInterval:  pollInterval,
		pollTimeout:   pollTimeout,
		recencyWindow: recencyWindow,
		now:           time.Now,
	}
}

var _ interfaces.DeepLinkVerifier = (*Verifier)(nil)

// Verify runs one verification attempt: acquire, scope, locate,
// classify, evaluate, verdict. Every failure mode is a terminal
// diagnostic verdict; nothing escapes as an error.
func (v *Verifier) Verify(ctx context.Context, deviceID string) *models.DeepLinkVerdict {
	attemptID := uuid.NewString()

	// Acquire: ensure the stream is live, then wait (bounded) for the
	// first deep-link records.
	if err := v.telemetry.EnsureStreaming(ctx, v.prefix, deviceID); err != nil {
		return &models.DeepLinkVerdict{
			AttemptID: attemptID,
			Stage:     models.StageAcquire,
			Reason:    err.Error(),
		}
	}
	records := telemetry.WaitForRecords(ctx, v.telemetry, models.ClassDeepLink, v.pollInterval, v.pollTimeout)

	// Scope: only records inside the recency window count as evidence.
	cutoff := v.now().Add(-v.recencyWindow).UnixMilli()
	recent := make([]models.ParsedRecord, 0, len(records))
	for _, rec := range records {
		if rec.HasTimestamp && rec.TimestampMs >= cutoff {
			recent = append(recent, rec)
		}
	}
	if len(recent) == 0 {
		return &models.DeepLinkVerdict{
			AttemptID: attemptID,
			Stage:     models.StageScope,
			Reason:    fmt.Sprintf("%v: no deep-link records within the last %s; open the link on the device and retry", models.ErrStaleOrMissingEvidence, v.recencyWindow),
		}
	}

	// Locate: newest-to-oldest, first record reporting status FOUND.
	var located *models.ParsedRecord
	for i := len(recent) - 1; i >= 0; i-- {
		if status, _ := recent[i].JSON["status"].(string); status == "FOUND" {
			located = &recent[i]
			break
		}
	}
	if located == nil {
		latest := recent[len(recent)-1]
		return &models.DeepLinkVerdict{
			AttemptID:       attemptID,
			Stage:           models.StageLocate,
			Reason:          fmt.Sprintf("%v: latest record has status %q", models.ErrStatusNotFound, normalizeValue(latest.JSON["status"])),
			Record:          latest.JSON,
			RecordTimestamp: latest.DisplayTimestamp,
		}
	}

	// Classify: is_deferred decides the evaluation type. Anything but a
	// literal false (including absent) evaluates as deferred.
	secondary := secondaryPayload(located.JSON)
	merged := mergePayloads(secondary, located.JSON)

	evalType := models.EvaluationDeferred
	evalLabel := string(models.EvaluationDeferred)
	if raw, ok := lookupValue(merged, "is_deferred", nil); ok {
		if b, isBool := raw.(bool); isBool && !b {
			evalType = models.EvaluationDirect
			evalLabel = string(models.EvaluationDirect)
		}
	} else {
		evalLabel = string(models.EvaluationDeferred) + " (unknown)"
	}

	expected, hasExpected := v.store.Get()
	verdict := &models.DeepLinkVerdict{
		AttemptID:       attemptID,
		Stage:           models.StageComplete,
		EvaluationType:  evalType,
		EvaluationLabel: evalLabel,
		Record:          located.JSON,
		RecordTimestamp: located.DisplayTimestamp,
	}
	if hasExpected {
		verdict.ExpectedSource = expected.SourceURL
	}

	// Field evaluation over the static field table.
	for _, spec := range deepLinkFieldSpecs {
		var expectedStr string
		expectedPresent := false
		if hasExpected {
			if raw, ok := lookupValue(expected.Payload, spec.Key, spec.Aliases); ok {
				expectedStr = normalizeValue(raw)
				expectedPresent = expectedStr != ""
			}
		}

		receivedRaw, _ := lookupValue(merged, spec.Key, spec.Aliases)
		receivedStr := normalizeValue(receivedRaw)

		required := spec.Key == "status" || spec.Key == "is_deferred"
		if !required {
			if hasExpected {
				required = spec.CompareFor.Has(evalType) && expectedPresent
			} else {
				required = spec.RequiredFor.Has(evalType)
			}
		}

		compared := spec.CompareFor.Has(evalType) && hasExpected && expectedPresent
		match := !compared || expectedStr == receivedStr

		result := models.FieldResult{
			Key:      spec.Key,
			Expected: expectedStr,
			Received: receivedStr,
			Required: required,
			Present:  receivedStr != "",
			Match:    match,
			Compared: compared,
		}
		verdict.Fields = append(verdict.Fields, result)

		if required && receivedStr == "" {
			verdict.MissingRequired = append(verdict.MissingRequired, spec.Key)
		}
		if compared && !match {
			verdict.Mismatches = append(verdict.Mismatches, result)
		}
	}

	verdict.Pass = len(verdict.MissingRequired) == 0 && len(verdict.Mismatches) == 0
	if !verdict.Pass {
		verdict.Stage = models.StageEvaluate
		verdict.Reason = fmt.Sprintf("%d missing required field(s), %d mismatch(es)", len(verdict.MissingRequired), len(verdict.Mismatches))
	}

	v.logger.Debug().
		Str("attempt", attemptID).
		Bool("pass", verdict.Pass).
		Str("evaluation", evalLabel).
		Int("fields", len(verdict.Fields)).
		Msg("Deep link verification complete")

	return verdict
}

// secondaryPayload extracts the nested deep-link payload, which may
// arrive JSON-stringified under "deepLink" or "deeplink", or already
// decoded as an object.
func secondaryPayload(record map[string]interface{}) map[string]interface{} {
	for _, key := range []string{"deepLink", "deeplink"} {
		switch v := record[key].(type) {
		case string:
			if nested := telemetry.ExtractJSON(v); nested != nil {
				return nested
			}
		case map[string]interface{}:
			return v
		}
	}
	return nil
}

// mergePayloads builds the received view: secondary payload fields
// overridden by top-level fields.
func mergePayloads(secondary, top map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(secondary)+len(top))
	for k, v := range secondary {
		merged[k] = v
	}
	for k, v := range top {
		merged[k] = v
	}
	return merged
}

// lookupValue resolves a value by direct key, falling back to aliases.
func lookupValue(payload map[string]interface{}, key string, aliases []string) (interface{}, bool) {
	if payload == nil {
		return nil, false
	}
	if v, ok := payload[key]; ok {
		return v, true
	}
	for _, alias := range aliases {
		if v, ok := payload[alias]; ok {
			return v, true
		}
	}
	return nil, false
}

// normalizeValue flattens a payload value to its canonical string form:
// empty for nil, the literal text for primitives, JSON for anything
// structured.
func normalizeValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool, float64, int, int64, json.Number:
		return fmt.Sprintf("%v", t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}
