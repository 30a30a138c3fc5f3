package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClientMessage_Ping(t *testing.T) {
	msg, err := ParseClientMessage([]byte(`{"type":"ping"}`))
	require.NoError(t, err)
	assert.Equal(t, TypePing, msg.Type)
}

func TestParseClientMessage_Subscribe(t *testing.T) {
	msg, err := ParseClientMessage([]byte(`{"type":"subscribe","data":{"channel":"sessions"}}`))
	require.NoError(t, err)
	assert.Equal(t, TypeSubscribe, msg.Type)
}

func TestParseClientMessage_LocationUpdate(t *testing.T) {
	msg, err := ParseClientMessage([]byte(`{"type":"location-update","data":{"latitude":40.7128,"longitude":-74.006}}`))
	require.NoError(t, err)
	assert.Equal(t, TypeLocationUpdate, msg.Type)
}

func TestParseClientMessage_RejectsUnknownType(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"type":"teleport"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown message type")
}

func TestParseClientMessage_RejectsMissingType(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"data":{}}`))
	require.Error(t, err)
}

func TestParseClientMessage_RejectsMalformedJSON(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"type":`))
	require.Error(t, err)
}

func TestParseClientMessage_RejectsOutOfRangeCoordinates(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"latitude too high", `{"type":"location-update","data":{"latitude":91,"longitude":0}}`},
		{"latitude too low", `{"type":"location-update","data":{"latitude":-91,"longitude":0}}`},
		{"longitude too high", `{"type":"location-update","data":{"latitude":0,"longitude":181}}`},
		{"longitude too low", `{"type":"location-update","data":{"latitude":0,"longitude":-181}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseClientMessage([]byte(tc.payload))
			require.Error(t, err)
		})
	}
}

func TestParseClientMessage_RejectsLocationUpdateWithoutPayload(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"type":"location-update"}`))
	require.Error(t, err)
}
