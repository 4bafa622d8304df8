package models

// ConversionVerdict is the result of an install-attribution check over
// CONVERSION records.
type ConversionVerdict struct {
	Pass            bool                   `json:"pass"`
	Status          string                 `json:"status,omitempty"` // Organic / Non-organic
	MediaSource     string                 `json:"media_source,omitempty"`
	Campaign        string                 `json:"campaign,omitempty"`
	FirstLaunch     bool                   `json:"first_launch"`
	Reason          string                 `json:"reason,omitempty"`
	Record          map[string]interface{} `json:"record,omitempty"`
	RecordTimestamp string                 `json:"record_timestamp,omitempty"`
}
