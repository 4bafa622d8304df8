package models

import "time"

// EvaluationType classifies a deep-link verification attempt. Direct
// means the link was opened with the app already installed; deferred
// means the link intent was captured before install and honored on
// first open.
type EvaluationType string

const (
	EvaluationDirect   EvaluationType = "direct"
	EvaluationDeferred EvaluationType = "deferred"
)

// EvalSet marks which evaluation types an attribute of a field spec
// applies to.
type EvalSet struct {
	Deferred bool
	Direct   bool
}

// Has reports whether the set contains the given evaluation type.
func (s EvalSet) Has(t EvaluationType) bool {
	switch t {
	case EvaluationDeferred:
		return s.Deferred
	case EvaluationDirect:
		return s.Direct
	}
	return false
}

// DeepLinkFieldSpec describes one deep-link payload field: how to
// resolve its expected value (key then aliases) and for which
// evaluation types it is required or compared. The field table is
// static configuration and never mutated at runtime.
type DeepLinkFieldSpec struct {
	Key         string
	Aliases     []string
	RequiredFor EvalSet
	CompareFor  EvalSet
}

// FieldResult is the per-field outcome of a deep-link verification.
type FieldResult struct {
	Key      string `json:"key"`
	Expected string `json:"expected"`
	Received string `json:"received"`
	Required bool   `json:"required"`
	Present  bool   `json:"present"`
	Match    bool   `json:"match"`
	Compared bool   `json:"compared"`
}

// Deep-link verification stages, reported on the verdict so callers
// can tell where a failed attempt stopped.
const (
	StageAcquire  = "acquire"
	StageScope    = "scope"
	StageLocate   = "locate"
	StageEvaluate = "evaluate"
	StageComplete = "complete"
)

// DeepLinkVerdict is the terminal result of one verification attempt.
// A failed verification is a normal, reportable outcome; verdicts are
// returned, never raised.
type DeepLinkVerdict struct {
	AttemptID       string                 `json:"attempt_id"`
	Pass            bool                   `json:"pass"`
	Stage           string                 `json:"stage"`
	Reason          string                 `json:"reason,omitempty"`
	EvaluationType  EvaluationType         `json:"evaluation_type,omitempty"`
	EvaluationLabel string                 `json:"evaluation_label,omitempty"`
	Fields          []FieldResult          `json:"fields,omitempty"`
	Mismatches      []FieldResult          `json:"mismatches,omitempty"`
	MissingRequired []string               `json:"missing_required,omitempty"`
	Record          map[string]interface{} `json:"record,omitempty"`
	RecordTimestamp string                 `json:"record_timestamp,omitempty"`
	ExpectedSource  string                 `json:"expected_source,omitempty"`
}

// ExpectedDeepLinkData is the most recently resolved OneLink payload,
// used as the expected side of deep-link field reconciliation.
// Last-write-wins; no history is retained.
type ExpectedDeepLinkData struct {
	SourceURL  string                 `json:"source_url"`
	Payload    map[string]interface{} `json:"payload"`
	CapturedAt time.Time              `json:"captured_at"`
}
