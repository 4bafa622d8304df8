package credentials

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/AppsFlyerKnowledge/appsflyer-sdk-mcp-server/internal/interfaces"
)

// checkResult caches the outcome of one (appID, devKey) validation so
// the gate only hits the API once per pair per process.
type checkResult struct {
	ok     bool
	detail string
}

// Checker validates an (app id, dev key) pair against the AppsFlyer
// API before any integration verification runs.
type Checker struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
	logger  arbor.ILogger

	mu    sync.Mutex
	cache map[string]checkResult
}

// NewChecker creates a credential checker against the given API base
// URL (e.g. https://hq1.appsflyer.com).
func NewChecker(baseURL string, requestTimeout time.Duration, rps float64, logger arbor.ILogger) *Checker {
	if requestTimeout <= 0 {
		requestTimeout = 15 * time.Second
	}
	if rps <= 0 {
		rps = 1
	}
	return &Checker{
		client:  &http.Client{Timeout: requestTimeout},
		baseURL: baseURL,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		logger:  logger,
		cache:   make(map[string]checkResult),
	}
}

var _ interfaces.CredentialsService = (*Checker)(nil)

// Check validates the pair, returning the cached result on repeat
// calls. A rejected pair is a normal outcome (ok=false), not an error;
// err is reserved for transport failures.
func (c *Checker) Check(ctx context.Context, appID, devKey string) (bool, string, error) {
	if appID == "" || devKey == "" {
		return false, "app id and dev key are both required", nil
	}

	cacheKey := appID + "\x00" + devKey
	c.mu.Lock()
	if res, ok := c.cache[cacheKey]; ok {
		c.mu.Unlock()
		return res.ok, res.detail + " (cached)", nil
	}
	c.mu.Unlock()

	if err := c.limiter.Wait(ctx); err != nil {
		return false, "", err
	}

	endpoint := fmt.Sprintf("%s/api/validate/v1/app/%s", c.baseURL, appID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, "", err
	}
	req.Header.Set("authorization", devKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return false, "", fmt.Errorf("credential check request: %w", err)
	}
	defer resp.Body.Close()

	res := checkResult{}
	switch resp.StatusCode {
	case http.StatusOK:
		res = checkResult{ok: true, detail: "credentials accepted"}
	case http.StatusUnauthorized, http.StatusForbidden:
		res = checkResult{ok: false, detail: "dev key rejected for this app id"}
	case http.StatusNotFound:
		res = checkResult{ok: false, detail: fmt.Sprintf("app id %q not found", appID)}
	default:
		// Transient server trouble: report, but do not cache.
		return false, fmt.Sprintf("unexpected response %d from credential check", resp.StatusCode), nil
	}

	c.mu.Lock()
	c.cache[cacheKey] = res
	c.mu.Unlock()

	c.logger.Info().Str("app_id", appID).Bool("ok", res.ok).Msg("Credential check complete")
	return res.ok, res.detail, nil
}
