package verification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreEmpty(t *testing.T) {
	store := NewStore()

	data, ok := store.Get()
	assert.False(t, ok)
	assert.Nil(t, data)
}

func TestStoreLastWriteWins(t *testing.T) {
	store := NewStore()
	stamp := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return stamp }

	store.Set("https://app.onelink.me/first", map[string]interface{}{"c": "one"})
	store.Set("https://app.onelink.me/second", map[string]interface{}{"c": "two"})

	data, ok := store.Get()
	require.True(t, ok)
	assert.Equal(t, "https://app.onelink.me/second", data.SourceURL)
	assert.Equal(t, "two", data.Payload["c"])
	assert.Equal(t, stamp, data.CapturedAt)
}
