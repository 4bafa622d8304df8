package onelink

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/AppsFlyerKnowledge/appsflyer-sdk-mcp-server/internal/services/verification"
)

func newTestResolver(store *verification.Store, signingKey string) *Resolver {
	return NewResolver(store, signingKey, 5*time.Second, 100, arbor.NewLogger())
}

func TestResolveFollowsRedirectAndMergesParams(t *testing.T) {
	// Target carries the resolved attribution parameters.
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer target.Close()

	// Short link redirects to the target, adding parameters on the way.
	short := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL+"/app?deep_link_value=page&pid=email&c=spring", http.StatusFound)
	}))
	defer short.Close()

	store := verification.NewStore()
	payload, err := newTestResolver(store, "").Resolve(context.Background(), short.URL+"/AbCd?af_sub1=x")
	require.NoError(t, err)

	assert.Equal(t, "page", payload["deep_link_value"])
	assert.Equal(t, "email", payload["pid"])
	assert.Equal(t, "spring", payload["c"])
	// Short-link parameters survive the merge.
	assert.Equal(t, "x", payload["af_sub1"])

	data, ok := store.Get()
	require.True(t, ok, "resolution must publish the expected state")
	assert.Equal(t, short.URL+"/AbCd?af_sub1=x", data.SourceURL)
	assert.Equal(t, "page", data.Payload["deep_link_value"])
}

func TestResolveSignsRequestWhenKeyed(t *testing.T) {
	var gotSignature string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSignature = r.Header.Get("af-signature")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := newTestResolver(verification.NewStore(), "secret").Resolve(context.Background(), srv.URL+"/x?c=one")
	require.NoError(t, err)
	assert.NotEmpty(t, gotSignature)
	assert.Len(t, gotSignature, 64, "hex-encoded SHA-256")
}

func TestResolveRejectsInvalidURL(t *testing.T) {
	_, err := newTestResolver(verification.NewStore(), "").Resolve(context.Background(), "not a url")
	assert.Error(t, err)
}
