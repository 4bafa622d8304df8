package verification

import "github.com/AppsFlyerKnowledge/appsflyer-sdk-mcp-server/internal/models"

// deepLinkFieldSpecs is the static reconciliation table: for each
// deep-link payload field, how to resolve the expected value (key then
// aliases) and for which evaluation types the field is required or
// compared. status and is_deferred are always required, independent of
// this table.
var deepLinkFieldSpecs = []models.DeepLinkFieldSpec{
	{
		Key:         "status",
		RequiredFor: models.EvalSet{Deferred: true, Direct: true},
	},
	{
		Key:         "is_deferred",
		RequiredFor: models.EvalSet{Deferred: true, Direct: true},
	},
	{
		Key:         "deep_link_value",
		RequiredFor: models.EvalSet{Deferred: true, Direct: true},
		CompareFor:  models.EvalSet{Deferred: true, Direct: true},
	},
	{
		Key:        "deep_link_sub1",
		CompareFor: models.EvalSet{Deferred: true, Direct: true},
	},
	{
		Key:        "af_sub1",
		CompareFor: models.EvalSet{Deferred: true, Direct: true},
	},
	{
		Key:        "af_sub2",
		CompareFor: models.EvalSet{Deferred: true, Direct: true},
	},
	{
		Key:        "af_sub3",
		CompareFor: models.EvalSet{Deferred: true, Direct: true},
	},
	{
		Key:        "af_sub4",
		CompareFor: models.EvalSet{Deferred: true, Direct: true},
	},
	{
		Key:        "af_sub5",
		CompareFor: models.EvalSet{Deferred: true, Direct: true},
	},
	{
		Key:         "pid",
		Aliases:     []string{"media_source"},
		RequiredFor: models.EvalSet{Deferred: true, Direct: true},
		CompareFor:  models.EvalSet{Deferred: true, Direct: true},
	},
	{
		Key:        "c",
		Aliases:    []string{"campaign"},
		CompareFor: models.EvalSet{Deferred: true, Direct: true},
	},
}
