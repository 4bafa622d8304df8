package models

import "errors"

// Diagnostic error taxonomy for the telemetry pipeline and the
// verification engine. Acquisition failures are returned to callers;
// parse failures are swallowed locally (the record is dropped and the
// pipeline continues). Nothing here is fatal to the process.
var (
	// ErrStreamUnavailable means the device log source could not be
	// started: no device reachable or the log tool failed to spawn.
	ErrStreamUnavailable = errors.New("log stream unavailable")

	// ErrStaleOrMissingEvidence means no matching records were observed
	// within the recency window.
	ErrStaleOrMissingEvidence = errors.New("no recent matching records")

	// ErrStatusNotFound means no deep-link record with status FOUND was
	// located.
	ErrStatusNotFound = errors.New("no FOUND deep-link record")

	// ErrMalformedPayload means JSON extraction from a log line failed.
	// Never surfaced as a hard error; the record is dropped.
	ErrMalformedPayload = errors.New("malformed embedded payload")
)
