package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Weather   WeatherConfig   `mapstructure:"weather"`
	WindField WindFieldConfig `mapstructure:"windfield"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	MQTT      MQTTConfig      `mapstructure:"mqtt"`
}

type APIConfig struct {
	Port    int  `mapstructure:"port"`
	Enabled bool `mapstructure:"enabled"`
}

type AuthConfig struct {
	JWTSecret   string `mapstructure:"jwt_secret"`
	TokenTTLMin int    `mapstructure:"token_ttl_minutes"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type WeatherConfig struct {
	Provider         string `mapstructure:"provider"` // openmeteo or stormglass
	StormglassAPIKey string `mapstructure:"stormglass_api_key"`
	Timezone         string `mapstructure:"timezone"`
}

type WindFieldConfig struct {
	SpacingMeters  float64 `mapstructure:"spacing_meters"`
	CellSizeMeters int     `mapstructure:"cell_size_meters"`
	FetchFanOut    int     `mapstructure:"fetch_fan_out"`
	Workers        int     `mapstructure:"workers"`
	QueueSize      int     `mapstructure:"queue_size"`
}

type SchedulerConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	PollIntervalHours int  `mapstructure:"poll_interval_hours"`
	RetentionDays     int  `mapstructure:"retention_days"`
}

type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
}

func Load(configPath string) (*Config, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/surfscout")
	}

	viper.SetEnvPrefix("surfscout")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("api.port", 8080)
	viper.SetDefault("api.enabled", true)
	viper.SetDefault("auth.jwt_secret", "")
	viper.SetDefault("auth.token_ttl_minutes", 720)
	viper.SetDefault("database.path", "./surfscout.db")
	viper.SetDefault("weather.provider", "openmeteo")
	viper.SetDefault("weather.stormglass_api_key", "")
	viper.SetDefault("weather.timezone", "UTC")
	viper.SetDefault("windfield.spacing_meters", 25000.0)
	viper.SetDefault("windfield.cell_size_meters", 1500)
	viper.SetDefault("windfield.fetch_fan_out", 8)
	viper.SetDefault("windfield.workers", 2)
	viper.SetDefault("windfield.queue_size", 32)
	viper.SetDefault("scheduler.enabled", true)
	viper.SetDefault("scheduler.poll_interval_hours", 4)
	viper.SetDefault("scheduler.retention_days", 30)
	viper.SetDefault("mqtt.enabled", false)
	viper.SetDefault("mqtt.broker", "tcp://localhost:1883")
	viper.SetDefault("mqtt.topic_prefix", "surfscout")
	viper.SetDefault("mqtt.client_id", "surfscout-backend")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
