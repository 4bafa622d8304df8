package fingerprint

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/AppsFlyerKnowledge/appsflyer-sdk-mcp-server/internal/interfaces"
)

// Service extracts signing certificate fingerprints from an app
// keystore by shelling out to the JDK keytool utility.
type Service struct {
	keytoolPath string
	logger      arbor.ILogger
}

// NewService creates the fingerprint service. keytoolPath defaults to
// "keytool" on PATH.
func NewService(keytoolPath string, logger arbor.ILogger) *Service {
	if keytoolPath == "" {
		keytoolPath = "keytool"
	}
	return &Service{keytoolPath: keytoolPath, logger: logger}
}

var _ interfaces.FingerprintService = (*Service)(nil)

// SHA256 runs keytool -list against the keystore and returns the
// SHA-256 certificate fingerprint, which AppsFlyer needs for app
// verification.
func (s *Service) SHA256(ctx context.Context, keystorePath, alias, storepass string) (string, error) {
	if keystorePath == "" {
		return "", fmt.Errorf("keystore path is required")
	}

	args := []string{"-list", "-v", "-keystore", keystorePath}
	if alias != "" {
		args = append(args, "-alias", alias)
	}
	if storepass != "" {
		args = append(args, "-storepass", storepass)
	}

	out, err := exec.CommandContext(ctx, s.keytoolPath, args...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("keytool failed: %v (%s)", err, firstLine(out))
	}

	fp := ExtractSHA256(string(out))
	if fp == "" {
		return "", fmt.Errorf("no SHA-256 fingerprint in keytool output for %s", keystorePath)
	}

	s.logger.Info().Str("keystore", keystorePath).Msg("Keystore fingerprint extracted")
	return fp, nil
}

// ExtractSHA256 scans keytool output for the SHA256 fingerprint line
// and returns the colon-separated hex value.
func ExtractSHA256(output string) string {
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(trimmed, "SHA256:"); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}

func firstLine(out []byte) string {
	text := strings.TrimSpace(string(out))
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return text[:idx]
	}
	return text
}
