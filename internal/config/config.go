package config

import (
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Engine    EngineConfig
	MQTT      MQTTConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port        string
	Host        string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

// EngineConfig tunes the matching engine. Every knob is supplied at
// construction; nothing inside the engine re-reads the environment.
type EngineConfig struct {
	NearbyRadiusKm      float64
	BandwidthWindowSize int
	MaxSpeedtestSamples int
	HeartbeatInterval   time.Duration
	RankingWeights      RankingWeights
}

// RankingWeights is the composite-score weight set. The four weights must
// sum to 1.
type RankingWeights struct {
	Speed     float64
	Battery   float64
	Trust     float64
	Proximity float64
}

func (w RankingWeights) Validate() error {
	sum := w.Speed + w.Battery + w.Trust + w.Proximity
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("ranking weights must sum to 1, got %v", sum)
	}
	if w.Speed < 0 || w.Battery < 0 || w.Trust < 0 || w.Proximity < 0 {
		return errors.New("ranking weights must be non-negative")
	}
	return nil
}

type MQTTConfig struct {
	Broker            string
	ClientID          string
	Username          string
	Password          string
	SpeedtestTopic    string
	AvailabilityTopic string
	BatteryTopic      string
	QoS               byte
}

// Enabled reports whether telemetry ingestion over MQTT is configured.
func (m *MQTTConfig) Enabled() bool {
	return m.Broker != ""
}

type RateLimitConfig struct {
	GeneralRPS   float64
	GeneralBurst int
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AddConfigPath(".")
	if homeDir, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(homeDir)
	}
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			if _, statErr := os.Stat(".env"); !os.IsNotExist(statErr) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
		log.Printf("Warning: config file not found: %v. Falling back to environment variables only.", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:        viper.GetString("SERVER_PORT"),
			Host:        viper.GetString("SERVER_HOST"),
			Environment: viper.GetString("ENVIRONMENT"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: viper.GetInt("JWT_EXPIRY_HOURS"),
		},
		Engine: EngineConfig{
			NearbyRadiusKm:      viper.GetFloat64("NEARBY_RADIUS_KM"),
			BandwidthWindowSize: viper.GetInt("BANDWIDTH_WINDOW_SIZE"),
			MaxSpeedtestSamples: viper.GetInt("MAX_SPEEDTEST_SAMPLES"),
			HeartbeatInterval:   viper.GetDuration("HEARTBEAT_INTERVAL"),
			RankingWeights: RankingWeights{
				Speed:     viper.GetFloat64("RANKING_WEIGHT_SPEED"),
				Battery:   viper.GetFloat64("RANKING_WEIGHT_BATTERY"),
				Trust:     viper.GetFloat64("RANKING_WEIGHT_TRUST"),
				Proximity: viper.GetFloat64("RANKING_WEIGHT_PROXIMITY"),
			},
		},
		MQTT: MQTTConfig{
			Broker:            viper.GetString("MQTT_BROKER"),
			ClientID:          viper.GetString("MQTT_CLIENT_ID"),
			Username:          viper.GetString("MQTT_USERNAME"),
			Password:          viper.GetString("MQTT_PASSWORD"),
			SpeedtestTopic:    viper.GetString("MQTT_SPEEDTEST_TOPIC"),
			AvailabilityTopic: viper.GetString("MQTT_AVAILABILITY_TOPIC"),
			BatteryTopic:      viper.GetString("MQTT_BATTERY_TOPIC"),
			QoS:               byte(viper.GetUint("MQTT_QOS")),
		},
		RateLimit: RateLimitConfig{
			GeneralRPS:   viper.GetFloat64("RATE_LIMIT_GENERAL_RPS"),
			GeneralBurst: viper.GetInt("RATE_LIMIT_GENERAL_BURST"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods:   viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders:   viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
			ExposedHeaders:   viper.GetStringSlice("CORS_EXPOSED_HEADERS"),
			AllowCredentials: viper.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           viper.GetInt("CORS_MAX_AGE"),
		},
	}

	if err := config.Engine.RankingWeights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine configuration: %w", err)
	}

	return config, nil
}

func setDefaults() {
	viper.SetDefault("NEARBY_RADIUS_KM", 5.0)
	viper.SetDefault("BANDWIDTH_WINDOW_SIZE", 10)
	viper.SetDefault("MAX_SPEEDTEST_SAMPLES", 1000)
	viper.SetDefault("HEARTBEAT_INTERVAL", "30s")
	viper.SetDefault("RANKING_WEIGHT_SPEED", 0.4)
	viper.SetDefault("RANKING_WEIGHT_BATTERY", 0.3)
	viper.SetDefault("RANKING_WEIGHT_TRUST", 0.2)
	viper.SetDefault("RANKING_WEIGHT_PROXIMITY", 0.1)
	viper.SetDefault("RATE_LIMIT_GENERAL_RPS", 50.0)
	viper.SetDefault("RATE_LIMIT_GENERAL_BURST", 100)
	viper.SetDefault("MQTT_QOS", 1)
	viper.SetDefault("MQTT_SPEEDTEST_TOPIC", "neighbornet/+/speedtest")
	viper.SetDefault("MQTT_AVAILABILITY_TOPIC", "neighbornet/+/availability")
	viper.SetDefault("MQTT_BATTERY_TOPIC", "neighbornet/+/battery")
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}
