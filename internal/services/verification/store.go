package verification

import (
	"sync"
	"time"

	"github.com/AppsFlyerKnowledge/appsflyer-sdk-mcp-server/internal/interfaces"
	"github.com/AppsFlyerKnowledge/appsflyer-sdk-mcp-server/internal/models"
)

// Store holds the most recently resolved OneLink payload used as the
// expected side of deep-link reconciliation. Last-write-wins, no
// history. Writes come from OneLink resolution, reads from the
// verifier; both are infrequent, a plain RWMutex is enough.
type Store struct {
	mu   sync.RWMutex
	data *models.ExpectedDeepLinkData
	now  func() time.Time
}

// NewStore creates an empty expected-state store.
func NewStore() *Store {
	return &Store{now: time.Now}
}

var _ interfaces.ExpectedStateStore = (*Store)(nil)

// Set records the payload resolved from a OneLink URL.
func (s *Store) Set(sourceURL string, payload map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = &models.ExpectedDeepLinkData{
		SourceURL:  sourceURL,
		Payload:    payload,
		CapturedAt: s.now(),
	}
}

// Get returns the latest expected data, or ok=false when nothing has
// been resolved yet.
func (s *Store) Get() (*models.ExpectedDeepLinkData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return nil, false
	}
	return s.data, true
}
