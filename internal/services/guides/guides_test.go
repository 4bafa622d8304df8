package guides

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetKnownTopics(t *testing.T) {
	svc := NewService()

	for _, topic := range svc.Topics() {
		guide, err := svc.Get(topic)
		require.NoError(t, err)
		assert.NotEmpty(t, guide)
	}
}

func TestGetUnknownTopic(t *testing.T) {
	svc := NewService()

	_, err := svc.Get("does_not_exist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does_not_exist")
}

func TestTopicsSorted(t *testing.T) {
	topics := NewService().Topics()
	assert.Equal(t, []string{"deep_linking", "in_app_events", "sdk_install"}, topics)
}
