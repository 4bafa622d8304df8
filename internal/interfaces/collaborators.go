package interfaces

import "context"

// OneLinkService resolves an AppsFlyer short link to its underlying
// attribution parameters and publishes them as the expected deep-link
// state.
type OneLinkService interface {
	// Resolve follows the short link, extracts the attribution payload
	// from the resolved target, and writes it to the expected state
	// store. Returns the extracted payload.
	Resolve(ctx context.Context, oneLinkURL string) (map[string]interface{}, error)
}

// CredentialsService validates an (app id, dev key) pair against the
// AppsFlyer API. The result is cached so the gate runs once per pair
// per process.
type CredentialsService interface {
	Check(ctx context.Context, appID, devKey string) (ok bool, detail string, err error)
}

// FingerprintService extracts the SHA-256 certificate fingerprint from
// an app signing keystore via the external keytool utility.
type FingerprintService interface {
	SHA256(ctx context.Context, keystorePath, alias, storepass string) (string, error)
}

// GuideService serves static step-by-step integration guides.
type GuideService interface {
	Get(topic string) (string, error)
	Topics() []string
}
