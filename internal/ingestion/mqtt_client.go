package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"neighbornet/internal/config"
	domainDevice "neighbornet/internal/domain/device"
	"neighbornet/internal/logger"
	providerUsecase "neighbornet/internal/usecase/provider"
	speedtestUsecase "neighbornet/internal/usecase/speedtest"
	pkgmqtt "neighbornet/pkg/mqtt"
)

// MQTTIngestionClient routes device telemetry published over MQTT into the
// engine: speed samples into the bandwidth estimator, availability reports
// into the registry, battery/position heartbeats onto the device record.
type MQTTIngestionClient struct {
	cfg        *config.MQTTConfig
	client     *pkgmqtt.Client
	speedtest  *speedtestUsecase.Service
	providers  *providerUsecase.Service
	deviceRepo domainDevice.Repository

	mu      sync.Mutex
	started bool
}

// NewMQTTIngestionClient builds the telemetry intake.
func NewMQTTIngestionClient(
	cfg *config.MQTTConfig,
	speedtest *speedtestUsecase.Service,
	providers *providerUsecase.Service,
	deviceRepo domainDevice.Repository,
) (*MQTTIngestionClient, error) {
	if cfg == nil || !cfg.Enabled() {
		return nil, errors.New("mqtt ingestion is not configured")
	}
	if speedtest == nil || providers == nil || deviceRepo == nil {
		return nil, errors.New("ingestion dependencies are required")
	}

	client := pkgmqtt.NewClient(&pkgmqtt.Config{
		Broker:               cfg.Broker,
		ClientID:             cfg.ClientID,
		Username:             cfg.Username,
		Password:             cfg.Password,
		CleanSession:         true,
		KeepAlive:            30,
		ConnectTimeout:       10,
		AutoReconnect:        true,
		MaxReconnectInterval: time.Minute,
	}, logger.Logger)

	return &MQTTIngestionClient{
		cfg:        cfg,
		client:     client,
		speedtest:  speedtest,
		providers:  providers,
		deviceRepo: deviceRepo,
	}, nil
}

// Start establishes the MQTT connection and subscribes to the topics.
func (c *MQTTIngestionClient) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return nil
	}

	if err := c.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	subs := map[string]pkgmqtt.MessageHandler{
		c.cfg.SpeedtestTopic:    c.handleSpeedSample,
		c.cfg.AvailabilityTopic: c.handleAvailability,
		c.cfg.BatteryTopic:      c.handleBattery,
	}

	for topic, handler := range subs {
		if topic == "" {
			continue
		}
		if err := c.client.Subscribe(topic, c.cfg.QoS, handler); err != nil {
			return err
		}
	}

	c.started = true
	logger.Info("MQTT telemetry ingestion started",
		zap.String("broker", c.cfg.Broker),
	)
	return nil
}

// Stop disconnects from the broker.
func (c *MQTTIngestionClient) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return
	}
	c.client.Disconnect()
	c.started = false
}

func (c *MQTTIngestionClient) handleSpeedSample(topic string, payload []byte) {
	var msg SpeedSampleMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		logger.Warn("Dropping malformed speed sample message",
			zap.String("topic", topic),
			zap.Error(err),
		)
		return
	}

	deviceID, err := msg.Validate()
	if err != nil {
		logger.Warn("Rejecting invalid speed sample message",
			zap.String("topic", topic),
			zap.Error(err),
		)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := c.speedtest.RecordSample(ctx, deviceID, &speedtestUsecase.ReportSampleRequest{
		UploadMbps:   msg.UploadMbps,
		DownloadMbps: msg.DownloadMbps,
		LatencyMs:    msg.LatencyMs,
	}); err != nil {
		logger.Error("Failed to record speed sample from MQTT",
			zap.String("device_id", deviceID.String()),
			zap.Error(err),
		)
	}
}

func (c *MQTTIngestionClient) handleAvailability(topic string, payload []byte) {
	var msg AvailabilityMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		logger.Warn("Dropping malformed availability message",
			zap.String("topic", topic),
			zap.Error(err),
		)
		return
	}

	deviceID, err := msg.Validate()
	if err != nil {
		logger.Warn("Rejecting invalid availability message",
			zap.String("topic", topic),
			zap.Error(err),
		)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := c.providers.SetAvailability(ctx, deviceID, &providerUsecase.SetAvailabilityRequest{
		IsAvailable:        msg.IsAvailable,
		HotspotEnabled:     msg.HotspotEnabled,
		EstimatedSpeedMbps: msg.EstimatedSpeedMbps,
		MaxShareMbps:       msg.MaxShareMbps,
	}); err != nil {
		logger.Error("Failed to apply availability from MQTT",
			zap.String("device_id", deviceID.String()),
			zap.Error(err),
		)
	}
}

func (c *MQTTIngestionClient) handleBattery(topic string, payload []byte) {
	var msg BatteryMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		logger.Warn("Dropping malformed battery message",
			zap.String("topic", topic),
			zap.Error(err),
		)
		return
	}

	deviceID, err := msg.Validate()
	if err != nil {
		logger.Warn("Rejecting invalid battery message",
			zap.String("topic", topic),
			zap.Error(err),
		)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := c.deviceRepo.UpdateBattery(ctx, deviceID, msg.BatteryLevel); err != nil {
		logger.Error("Failed to update battery from MQTT",
			zap.String("device_id", deviceID.String()),
			zap.Error(err),
		)
		return
	}
	if msg.Latitude != nil && msg.Longitude != nil {
		if err := c.deviceRepo.UpdatePosition(ctx, deviceID, *msg.Latitude, *msg.Longitude); err != nil {
			logger.Error("Failed to update position from MQTT",
				zap.String("device_id", deviceID.String()),
				zap.Error(err),
			)
		}
	}
	if err := c.deviceRepo.UpdateLastSeen(ctx, deviceID); err != nil {
		logger.Error("Failed to update last seen from MQTT",
			zap.String("device_id", deviceID.String()),
			zap.Error(err),
		)
	}
}
