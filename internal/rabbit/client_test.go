package rabbit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sparxfest/internal/dto"
)

func TestTriggerCodecRoundTrip(t *testing.T) {
	msg := dto.SyncTriggerMessage{Tag: dto.SyncTag, QueueID: "q-123"}

	payload, err := encodeTrigger(msg)
	require.NoError(t, err)

	decoded, err := decodeTrigger(payload)
	require.NoError(t, err)
	assert.Equal(t, msg, decoded)
}

func TestTriggerCodecOmitsEmptyQueueID(t *testing.T) {
	payload, err := encodeTrigger(dto.SyncTriggerMessage{Tag: dto.SyncTag})
	require.NoError(t, err)
	assert.NotContains(t, string(payload), "queue_id")
}

func TestDecodeTriggerRejectsGarbage(t *testing.T) {
	_, err := decodeTrigger([]byte("not json"))
	assert.Error(t, err)
}
