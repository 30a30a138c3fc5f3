package ingestion

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestSpeedSampleMessage_Validate(t *testing.T) {
	deviceID := uuid.New()

	msg := &SpeedSampleMessage{DeviceID: deviceID.String(), UploadMbps: 10, DownloadMbps: 50, LatencyMs: 20}
	parsed, err := msg.Validate()
	require.NoError(t, err)
	assert.Equal(t, deviceID, parsed)

	_, err = (&SpeedSampleMessage{DeviceID: "not-a-uuid"}).Validate()
	require.Error(t, err)

	_, err = (&SpeedSampleMessage{DeviceID: deviceID.String(), DownloadMbps: -1}).Validate()
	require.Error(t, err)
}

func TestAvailabilityMessage_Validate(t *testing.T) {
	deviceID := uuid.New()

	_, err := (&AvailabilityMessage{DeviceID: deviceID.String(), IsAvailable: true}).Validate()
	require.NoError(t, err)

	_, err = (&AvailabilityMessage{DeviceID: deviceID.String(), EstimatedSpeedMbps: floatPtr(-1)}).Validate()
	require.Error(t, err)

	_, err = (&AvailabilityMessage{DeviceID: ""}).Validate()
	require.Error(t, err)
}

func TestBatteryMessage_Validate(t *testing.T) {
	deviceID := uuid.New()

	parsed, err := (&BatteryMessage{
		DeviceID:     deviceID.String(),
		BatteryLevel: 80,
		Latitude:     floatPtr(40.7128),
		Longitude:    floatPtr(-74.0060),
	}).Validate()
	require.NoError(t, err)
	assert.Equal(t, deviceID, parsed)

	_, err = (&BatteryMessage{DeviceID: deviceID.String(), BatteryLevel: 101}).Validate()
	require.Error(t, err)

	// Coordinates must come as a pair.
	_, err = (&BatteryMessage{DeviceID: deviceID.String(), BatteryLevel: 50, Latitude: floatPtr(1)}).Validate()
	require.Error(t, err)

	_, err = (&BatteryMessage{
		DeviceID:     deviceID.String(),
		BatteryLevel: 50,
		Latitude:     floatPtr(95),
		Longitude:    floatPtr(0),
	}).Validate()
	require.Error(t, err)
}
