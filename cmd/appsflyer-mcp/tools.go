package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createStartLogStreamTool returns the start_log_stream tool definition
func createStartLogStreamTool() mcp.Tool {
	return mcp.NewTool("start_log_stream",
		mcp.WithDescription("Start (or reuse) the device log stream that feeds SDK telemetry into the verification buffer"),
		mcp.WithString("prefix",
			mcp.Description("Log tag prefix to stream (default: configured AppsFlyer marker)"),
		),
		mcp.WithString("device_id",
			mcp.Description("Device serial for adb -s (default: configured serial, or the single connected device)"),
		),
	)
}

// createGetSDKLogsTool returns the get_sdk_logs tool definition
func createGetSDKLogsTool() mcp.Tool {
	return mcp.NewTool("get_sdk_logs",
		mcp.WithDescription("Return recent structured SDK log records from the telemetry buffer"),
		mcp.WithString("keyword",
			mcp.Description("Filter records by classification keyword: CONVERSION, LAUNCH, INAPP, deepLink"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum records to return (default: 20, max: 100)"),
		),
	)
}

// createVerifyDeepLinkTool returns the verify_deep_link tool definition
func createVerifyDeepLinkTool() mcp.Tool {
	return mcp.NewTool("verify_deep_link",
		mcp.WithDescription("Verify the deep-link flow: locate a recent FOUND record and reconcile its fields against the resolved OneLink expectation"),
		mcp.WithString("device_id",
			mcp.Description("Device serial override"),
		),
	)
}

// createVerifyInstallAttributionTool returns the verify_install_attribution tool definition
func createVerifyInstallAttributionTool() mcp.Tool {
	return mcp.NewTool("verify_install_attribution",
		mcp.WithDescription("Verify install attribution from recent CONVERSION records (af_status, media source, campaign)"),
		mcp.WithString("device_id",
			mcp.Description("Device serial override"),
		),
	)
}

// createVerifyInAppEventTool returns the verify_in_app_event tool definition
func createVerifyInAppEventTool() mcp.Tool {
	return mcp.NewTool("verify_in_app_event",
		mcp.WithDescription("Verify a named in-app event was prepared and confirmed sent, correlated by task id"),
		mcp.WithString("event_name",
			mcp.Required(),
			mcp.Description("Event name as reported to the SDK (e.g. af_purchase)"),
		),
		mcp.WithString("device_id",
			mcp.Description("Device serial override"),
		),
	)
}

// createResolveOneLinkTool returns the resolve_onelink tool definition
func createResolveOneLinkTool() mcp.Tool {
	return mcp.NewTool("resolve_onelink",
		mcp.WithDescription("Resolve a OneLink short URL and record its attribution parameters as the expected deep-link state"),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("OneLink short URL (e.g. https://myapp.onelink.me/AbCd/campaign)"),
		),
	)
}

// createCheckCredentialsTool returns the check_credentials tool definition
func createCheckCredentialsTool() mcp.Tool {
	return mcp.NewTool("check_credentials",
		mcp.WithDescription("Validate an AppsFlyer (app id, dev key) pair; result is cached per process"),
		mcp.WithString("app_id",
			mcp.Required(),
			mcp.Description("App identifier (Android package or iOS idXXXXXXXXX)"),
		),
		mcp.WithString("dev_key",
			mcp.Required(),
			mcp.Description("AppsFlyer dev key"),
		),
	)
}

// createGetAppFingerprintTool returns the get_app_fingerprint tool definition
func createGetAppFingerprintTool() mcp.Tool {
	return mcp.NewTool("get_app_fingerprint",
		mcp.WithDescription("Extract the SHA-256 signing certificate fingerprint from the app keystore via keytool"),
		mcp.WithString("keystore_path",
			mcp.Description("Keystore file path (default: configured keystore)"),
		),
		mcp.WithString("alias",
			mcp.Description("Key alias (default: configured alias)"),
		),
		mcp.WithString("storepass",
			mcp.Description("Keystore password (omit to let keytool prompt)"),
		),
	)
}

// createIntegrationGuideTool returns the integration_guide tool definition
func createIntegrationGuideTool() mcp.Tool {
	return mcp.NewTool("integration_guide",
		mcp.WithDescription("Step-by-step SDK integration guide for a topic"),
		mcp.WithString("topic",
			mcp.Required(),
			mcp.Description("Guide topic: sdk_install, deep_linking, in_app_events"),
		),
	)
}
