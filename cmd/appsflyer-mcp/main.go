package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/AppsFlyerKnowledge/appsflyer-sdk-mcp-server/internal/common"
	"github.com/AppsFlyerKnowledge/appsflyer-sdk-mcp-server/internal/services/credentials"
	"github.com/AppsFlyerKnowledge/appsflyer-sdk-mcp-server/internal/services/events"
	"github.com/AppsFlyerKnowledge/appsflyer-sdk-mcp-server/internal/services/fingerprint"
	"github.com/AppsFlyerKnowledge/appsflyer-sdk-mcp-server/internal/services/guides"
	"github.com/AppsFlyerKnowledge/appsflyer-sdk-mcp-server/internal/services/onelink"
	"github.com/AppsFlyerKnowledge/appsflyer-sdk-mcp-server/internal/services/telemetry"
	"github.com/AppsFlyerKnowledge/appsflyer-sdk-mcp-server/internal/services/verification"
)

var (
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func main() {
	flag.Parse()

	// Version flag prints the banner and exits; the banner never goes
	// to stdout while the MCP transport is using it.
	if *showVersion || *showVersionV {
		common.PrintBanner(common.GetVersion())
		os.Exit(0)
	}

	// Load configuration
	configPath := os.Getenv("APPSFLYER_MCP_CONFIG")
	if configPath == "" {
		configPath = "appsflyer-mcp.toml"
	}

	config, err := common.LoadFromFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Console logging defaults to warn: stdio carries the MCP
	// transport, so anything chattier goes to the file writer.
	logger := common.InitLogger(config)

	// Telemetry pipeline: shared buffer, parser, adb-backed source.
	buffer := telemetry.NewLogBuffer(config.Telemetry.BufferCapacity)
	parser := telemetry.NewParser(config.Telemetry.Marker)
	telemetryService := telemetry.NewService(buffer, parser, config.Device.AdbPath, logger)
	defer telemetryService.Stop()

	// Config carries durations as strings; convert once for wiring.
	pollInterval := common.ParseDurationOr(config.Telemetry.PollInterval, telemetry.DefaultPollInterval)
	pollTimeout := common.ParseDurationOr(config.Telemetry.PollTimeout, telemetry.DefaultPollTimeout)
	recencyWindow := common.ParseDurationOr(config.Telemetry.RecencyWindow, verification.DefaultRecencyWindow)
	requestTimeout := common.ParseDurationOr(config.AppsFlyer.RequestTimeout, 15*time.Second)

	// Verification engine over the shared pipeline.
	expectedStore := verification.NewStore()
	deepLinkVerifier := verification.NewVerifier(
		telemetryService, expectedStore, logger,
		config.Telemetry.TagPrefix,
		pollInterval, pollTimeout, recencyWindow,
	)
	conversionChecker := verification.NewConversionChecker(
		telemetryService, logger,
		config.Telemetry.TagPrefix,
		pollInterval, pollTimeout, recencyWindow,
	)
	eventCorrelator := events.NewCorrelator(
		telemetryService, logger,
		config.Telemetry.TagPrefix,
		pollInterval, pollTimeout, recencyWindow,
	)

	// Collaborators.
	oneLinkResolver := onelink.NewResolver(
		expectedStore,
		config.AppsFlyer.SigningKey,
		requestTimeout,
		config.AppsFlyer.RateLimit,
		logger,
	)
	credentialChecker := credentials.NewChecker(
		config.AppsFlyer.APIBaseURL,
		requestTimeout,
		config.AppsFlyer.RateLimit,
		logger,
	)
	fingerprintService := fingerprint.NewService(config.Keystore.KeytoolPath, logger)
	guideService := guides.NewService()

	// Create MCP server
	mcpServer := server.NewMCPServer(
		config.Server.Name,
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	deviceSerial := config.Device.Serial

	// Telemetry tools
	mcpServer.AddTool(createStartLogStreamTool(), handleStartLogStream(telemetryService, config.Telemetry.TagPrefix, deviceSerial, logger))
	mcpServer.AddTool(createGetSDKLogsTool(), handleGetSDKLogs(telemetryService, logger))

	// Verification tools
	mcpServer.AddTool(createVerifyDeepLinkTool(), handleVerifyDeepLink(deepLinkVerifier, deviceSerial, logger))
	mcpServer.AddTool(createVerifyInstallAttributionTool(), handleVerifyInstallAttribution(conversionChecker, deviceSerial, logger))
	mcpServer.AddTool(createVerifyInAppEventTool(), handleVerifyInAppEvent(eventCorrelator, deviceSerial, logger))

	// Collaborator tools
	mcpServer.AddTool(createResolveOneLinkTool(), handleResolveOneLink(oneLinkResolver, logger))
	mcpServer.AddTool(createCheckCredentialsTool(), handleCheckCredentials(credentialChecker, logger))
	mcpServer.AddTool(createGetAppFingerprintTool(), handleGetAppFingerprint(fingerprintService, config.Keystore, logger))
	mcpServer.AddTool(createIntegrationGuideTool(), handleIntegrationGuide(guideService, logger))

	// Start server (blocks on stdio)
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
