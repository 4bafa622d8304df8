package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const keytoolOutput = `Alias name: upload
Creation date: Mar 1, 2025
Entry type: PrivateKeyEntry
Certificate fingerprints:
	 SHA1: AA:BB:CC:DD:EE:FF:00:11:22:33:44:55:66:77:88:99:AA:BB:CC:DD
	 SHA256: 12:34:56:78:9A:BC:DE:F0:12:34:56:78:9A:BC:DE:F0:12:34:56:78:9A:BC:DE:F0:12:34:56:78:9A:BC:DE:F0
Signature algorithm name: SHA256withRSA
`

func TestExtractSHA256(t *testing.T) {
	got := ExtractSHA256(keytoolOutput)
	assert.Equal(t, "12:34:56:78:9A:BC:DE:F0:12:34:56:78:9A:BC:DE:F0:12:34:56:78:9A:BC:DE:F0:12:34:56:78:9A:BC:DE:F0", got)
}

func TestExtractSHA256Missing(t *testing.T) {
	assert.Empty(t, ExtractSHA256("no fingerprints here"))
	assert.Empty(t, ExtractSHA256(""))
}
