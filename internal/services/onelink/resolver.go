package onelink

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/AppsFlyerKnowledge/appsflyer-sdk-mcp-server/internal/interfaces"
)

// maxRedirects bounds how far a short link is followed before giving
// up.
const maxRedirects = 5

// Resolver follows an AppsFlyer OneLink short URL to its attribution
// target, extracts the attribution parameters, and publishes them as
// the expected deep-link state for verification.
type Resolver struct {
	client     *http.Client
	store      interfaces.ExpectedStateStore
	limiter    *rate.Limiter
	signingKey string
	logger     arbor.ILogger
}

// NewResolver creates a OneLink resolver. signingKey is optional; when
// set, outbound requests carry an HMAC-SHA256 signature header.
func NewResolver(store interfaces.ExpectedStateStore, signingKey string, requestTimeout time.Duration, rps float64, logger arbor.ILogger) *Resolver {
	if requestTimeout <= 0 {
		requestTimeout = 15 * time.Second
	}
	if rps <= 0 {
		rps = 2
	}
	return &Resolver{
		client: &http.Client{
			Timeout: requestTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		store:      store,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		signingKey: signingKey,
		logger:     logger,
	}
}

var _ interfaces.OneLinkService = (*Resolver)(nil)

// Resolve follows the short link and merges the attribution parameters
// of the original and resolved URLs (resolved wins), then writes the
// result to the expected state store.
func (r *Resolver) Resolve(ctx context.Context, oneLinkURL string) (map[string]interface{}, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	parsed, err := url.Parse(oneLinkURL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("invalid OneLink URL %q", oneLinkURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, oneLinkURL, nil)
	if err != nil {
		return nil, err
	}
	if r.signingKey != "" {
		req.Header.Set("af-signature", r.sign(parsed))
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resolving OneLink: %w", err)
	}
	defer resp.Body.Close()

	final := resp.Request.URL

	payload := make(map[string]interface{})
	mergeQuery(payload, parsed.Query())
	mergeQuery(payload, final.Query())

	r.store.Set(oneLinkURL, payload)
	r.logger.Info().
		Str("onelink", oneLinkURL).
		Str("resolved", final.String()).
		Int("params", len(payload)).
		Msg("OneLink resolved, expected state updated")

	return payload, nil
}

// sign computes the HMAC-SHA256 signature over the request path and
// query, hex encoded.
func (r *Resolver) sign(u *url.URL) string {
	mac := hmac.New(sha256.New, []byte(r.signingKey))
	mac.Write([]byte(u.Path + "?" + u.RawQuery))
	return hex.EncodeToString(mac.Sum(nil))
}

// mergeQuery flattens query values into the payload; repeated keys are
// joined so every value survives in the comparison string.
func mergeQuery(payload map[string]interface{}, values url.Values) {
	for key, vals := range values {
		if len(vals) == 1 {
			payload[key] = vals[0]
			continue
		}
		payload[key] = strings.Join(vals, ",")
	}
}
