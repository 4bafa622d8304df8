package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AppsFlyerKnowledge/appsflyer-sdk-mcp-server/internal/models"
)

// formatRecords formats filtered log records as markdown
func formatRecords(keyword string, records []models.ParsedRecord) string {
	var sb strings.Builder
	if keyword != "" {
		sb.WriteString(fmt.Sprintf("## SDK Log Records for %q (%d)\n\n", keyword, len(records)))
	} else {
		sb.WriteString(fmt.Sprintf("## SDK Log Records (%d)\n\n", len(records)))
	}

	if len(records) == 0 {
		sb.WriteString("No matching records in the buffer. Make sure the log stream is running and the app is emitting SDK debug logs.\n")
		return sb.String()
	}

	for _, rec := range records {
		sb.WriteString(fmt.Sprintf("**%s**", rec.DisplayTimestamp))
		if rec.Classification != "" {
			sb.WriteString(fmt.Sprintf(" `%s`", rec.Classification))
		}
		sb.WriteString("\n")
		payloadJSON, _ := json.Marshal(rec.JSON)
		sb.WriteString(fmt.Sprintf("```json\n%s\n```\n\n", string(payloadJSON)))
	}
	return sb.String()
}

// formatDeepLinkVerdict formats a deep-link verification verdict as markdown
func formatDeepLinkVerdict(v *models.DeepLinkVerdict) string {
	var sb strings.Builder

	if v.Pass {
		sb.WriteString("## ✅ Deep Link Verification PASSED\n\n")
	} else {
		sb.WriteString("## ❌ Deep Link Verification FAILED\n\n")
		sb.WriteString(fmt.Sprintf("**Failed at stage:** %s\n", v.Stage))
		if v.Reason != "" {
			sb.WriteString(fmt.Sprintf("**Reason:** %s\n", v.Reason))
		}
		sb.WriteString("\n")
	}

	if v.EvaluationLabel != "" {
		sb.WriteString(fmt.Sprintf("**Evaluation type:** %s\n", v.EvaluationLabel))
	}
	if v.ExpectedSource != "" {
		sb.WriteString(fmt.Sprintf("**Expected from:** %s\n", v.ExpectedSource))
	}
	sb.WriteString("\n")

	if len(v.Fields) > 0 {
		sb.WriteString("| Field | Expected | Received | Required | Result |\n")
		sb.WriteString("|-------|----------|----------|----------|--------|\n")
		for _, f := range v.Fields {
			result := "—"
			switch {
			case f.Compared && f.Match:
				result = "match"
			case f.Compared:
				result = "MISMATCH"
			case f.Required && !f.Present:
				result = "MISSING"
			case f.Present:
				result = "present"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %v | %s |\n", f.Key, f.Expected, f.Received, f.Required, result))
		}
		sb.WriteString("\n")
	}

	if len(v.MissingRequired) > 0 {
		sb.WriteString(fmt.Sprintf("**Missing required fields:** %s\n\n", strings.Join(v.MissingRequired, ", ")))
	}
	for _, m := range v.Mismatches {
		sb.WriteString(fmt.Sprintf("- `%s`: expected %q, received %q\n", m.Key, m.Expected, m.Received))
	}

	if v.Record != nil {
		recordJSON, _ := json.MarshalIndent(v.Record, "", "  ")
		sb.WriteString(fmt.Sprintf("\n**Located record** (%s):\n```json\n%s\n```\n", v.RecordTimestamp, string(recordJSON)))
	}

	return sb.String()
}

// formatConversionVerdict formats an install-attribution verdict as markdown
func formatConversionVerdict(v *models.ConversionVerdict) string {
	var sb strings.Builder

	if v.Pass {
		sb.WriteString("## ✅ Install Attribution Verified\n\n")
		sb.WriteString(fmt.Sprintf("**Status:** %s\n", v.Status))
		if v.MediaSource != "" {
			sb.WriteString(fmt.Sprintf("**Media source:** %s\n", v.MediaSource))
		}
		if v.Campaign != "" {
			sb.WriteString(fmt.Sprintf("**Campaign:** %s\n", v.Campaign))
		}
		sb.WriteString(fmt.Sprintf("**First launch:** %v\n", v.FirstLaunch))
	} else {
		sb.WriteString("## ❌ Install Attribution Not Verified\n\n")
		sb.WriteString(fmt.Sprintf("**Reason:** %s\n", v.Reason))
	}

	if v.Record != nil {
		recordJSON, _ := json.MarshalIndent(v.Record, "", "  ")
		sb.WriteString(fmt.Sprintf("\n**Conversion record** (%s):\n```json\n%s\n```\n", v.RecordTimestamp, string(recordJSON)))
	}

	return sb.String()
}

// formatEventVerdict formats an in-app event verification verdict as markdown
func formatEventVerdict(eventName string, v *models.EventVerdict) string {
	var sb strings.Builder

	switch {
	case v.Found && v.Event.Sent:
		sb.WriteString(fmt.Sprintf("## ✅ Event %q Sent\n\n", eventName))
	case v.Found:
		sb.WriteString(fmt.Sprintf("## ⚠️ Event %q Prepared But Not Confirmed\n\n", eventName))
	default:
		sb.WriteString(fmt.Sprintf("## ❌ Event %q Not Found\n\n", eventName))
	}

	if v.Reason != "" {
		sb.WriteString(fmt.Sprintf("%s\n\n", v.Reason))
	}

	if v.Event != nil {
		sb.WriteString(fmt.Sprintf("**Task id:** %s\n", v.Event.TaskID))
		sb.WriteString(fmt.Sprintf("**Status:** %s\n\n", v.Event.Status))
		if len(v.Event.Evidence) > 0 {
			sb.WriteString("**Evidence:**\n")
			for _, line := range v.Event.Evidence {
				sb.WriteString(fmt.Sprintf("- `%s`\n", line))
			}
			sb.WriteString("\n")
		}
		if len(v.Event.Payload) > 0 {
			payloadJSON, _ := json.MarshalIndent(v.Event.Payload, "", "  ")
			sb.WriteString(fmt.Sprintf("**Payload:**\n```json\n%s\n```\n", string(payloadJSON)))
		}
	}

	return sb.String()
}

// formatOneLinkPayload formats the resolved OneLink parameters as markdown
func formatOneLinkPayload(oneLinkURL string, payload map[string]interface{}) string {
	var sb strings.Builder
	sb.WriteString("## OneLink Resolved\n\n")
	sb.WriteString(fmt.Sprintf("**URL:** %s\n", oneLinkURL))
	sb.WriteString(fmt.Sprintf("**Parameters:** %d (now used as the expected deep-link state)\n\n", len(payload)))

	payloadJSON, _ := json.MarshalIndent(payload, "", "  ")
	sb.WriteString(fmt.Sprintf("```json\n%s\n```\n", string(payloadJSON)))
	sb.WriteString("\nOpen this link on the device, then run verify_deep_link.\n")
	return sb.String()
}
