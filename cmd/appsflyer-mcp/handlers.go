package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/AppsFlyerKnowledge/appsflyer-sdk-mcp-server/internal/common"
	"github.com/AppsFlyerKnowledge/appsflyer-sdk-mcp-server/internal/interfaces"
)

// textResult wraps plain text in a tool result. Verification failures
// travel this way too: a failed check is a reportable outcome, not a
// protocol error.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// handleStartLogStream implements the start_log_stream tool
func handleStartLogStream(tel interfaces.TelemetryService, defaultPrefix, defaultDevice string, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		prefix := request.GetString("prefix", defaultPrefix)
		deviceID := request.GetString("device_id", defaultDevice)

		if err := tel.EnsureStreaming(ctx, prefix, deviceID); err != nil {
			logger.Warn().Err(err).Msg("Log stream start failed")
			return textResult(fmt.Sprintf("Could not start log stream: %v", err)), nil
		}
		return textResult(fmt.Sprintf("Log stream active for prefix %q (device %q). Lines are being collected in the background.", prefix, deviceID)), nil
	}
}

// handleGetSDKLogs implements the get_sdk_logs tool
func handleGetSDKLogs(tel interfaces.TelemetryService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		keyword := request.GetString("keyword", "")

		limit := request.GetInt("limit", 20)
		if limit <= 0 {
			limit = 20
		}
		if limit > 100 {
			limit = 100
		}

		records := tel.FilterRecords(keyword)
		if len(records) > limit {
			records = records[len(records)-limit:]
		}
		return textResult(formatRecords(keyword, records)), nil
	}
}

// handleVerifyDeepLink implements the verify_deep_link tool
func handleVerifyDeepLink(verifier interfaces.DeepLinkVerifier, defaultDevice string, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		deviceID := request.GetString("device_id", defaultDevice)

		verdict := verifier.Verify(ctx, deviceID)
		logger.Info().Bool("pass", verdict.Pass).Str("stage", verdict.Stage).Msg("Deep link verification finished")
		return textResult(formatDeepLinkVerdict(verdict)), nil
	}
}

// handleVerifyInstallAttribution implements the verify_install_attribution tool
func handleVerifyInstallAttribution(checker interfaces.ConversionVerifier, defaultDevice string, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		deviceID := request.GetString("device_id", defaultDevice)

		verdict := checker.VerifyInstall(ctx, deviceID)
		logger.Info().Bool("pass", verdict.Pass).Msg("Install attribution check finished")
		return textResult(formatConversionVerdict(verdict)), nil
	}
}

// handleVerifyInAppEvent implements the verify_in_app_event tool
func handleVerifyInAppEvent(verifier interfaces.EventVerifier, defaultDevice string, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		eventName, err := request.RequireString("event_name")
		if err != nil || eventName == "" {
			return textResult("Error: event_name parameter is required"), nil
		}
		deviceID := request.GetString("device_id", defaultDevice)

		verdict := verifier.VerifyEvent(ctx, deviceID, eventName)
		logger.Info().Bool("found", verdict.Found).Str("event", eventName).Msg("In-app event verification finished")
		return textResult(formatEventVerdict(eventName, verdict)), nil
	}
}

// handleResolveOneLink implements the resolve_onelink tool
func handleResolveOneLink(resolver interfaces.OneLinkService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		oneLinkURL, err := request.RequireString("url")
		if err != nil || oneLinkURL == "" {
			return textResult("Error: url parameter is required"), nil
		}

		payload, err := resolver.Resolve(ctx, oneLinkURL)
		if err != nil {
			logger.Error().Err(err).Str("url", oneLinkURL).Msg("OneLink resolution failed")
			return textResult(fmt.Sprintf("OneLink resolution failed: %v", err)), nil
		}
		return textResult(formatOneLinkPayload(oneLinkURL, payload)), nil
	}
}

// handleCheckCredentials implements the check_credentials tool
func handleCheckCredentials(checker interfaces.CredentialsService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		appID, err := request.RequireString("app_id")
		if err != nil || appID == "" {
			return textResult("Error: app_id parameter is required"), nil
		}
		devKey, err := request.RequireString("dev_key")
		if err != nil || devKey == "" {
			return textResult("Error: dev_key parameter is required"), nil
		}

		ok, detail, err := checker.Check(ctx, appID, devKey)
		if err != nil {
			logger.Error().Err(err).Str("app_id", appID).Msg("Credential check failed")
			return textResult(fmt.Sprintf("Credential check failed: %v", err)), nil
		}
		if ok {
			return textResult(fmt.Sprintf("✅ Credentials valid for %s: %s", appID, detail)), nil
		}
		return textResult(fmt.Sprintf("❌ Credentials rejected for %s: %s", appID, detail)), nil
	}
}

// handleGetAppFingerprint implements the get_app_fingerprint tool
func handleGetAppFingerprint(svc interfaces.FingerprintService, keystore common.KeystoreConfig, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		keystorePath := request.GetString("keystore_path", keystore.Path)
		alias := request.GetString("alias", keystore.Alias)
		storepass := request.GetString("storepass", "")

		fp, err := svc.SHA256(ctx, keystorePath, alias, storepass)
		if err != nil {
			logger.Warn().Err(err).Str("keystore", keystorePath).Msg("Fingerprint extraction failed")
			return textResult(fmt.Sprintf("Fingerprint extraction failed: %v", err)), nil
		}
		return textResult(fmt.Sprintf("SHA-256 fingerprint for %s:\n\n    %s\n\nRegister this value in the AppsFlyer dashboard for app verification.", keystorePath, fp)), nil
	}
}

// handleIntegrationGuide implements the integration_guide tool
func handleIntegrationGuide(svc interfaces.GuideService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		topic, err := request.RequireString("topic")
		if err != nil || topic == "" {
			return textResult("Error: topic parameter is required"), nil
		}

		guide, err := svc.Get(topic)
		if err != nil {
			return textResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return textResult(guide), nil
	}
}
