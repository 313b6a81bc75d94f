package weather

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Category names a logical weather data category, each backed by one sensor
// entity on the hub.
type Category string

const (
	CategoryCurrent  Category = "current"
	CategoryHourly   Category = "hourly"
	CategoryDaily    Category = "daily"
	CategoryRange    Category = "range"
	CategoryDateTime Category = "current_date_time"
)

// Config holds the hub connection settings and the sensor entity id for each
// data category.
type Config struct {
	URL                       string `mapstructure:"url"`
	APIToken                  string `mapstructure:"api_token"`
	CurrentSensorName         string `mapstructure:"current_sensor_name"`
	HourlyForecastSensorName  string `mapstructure:"hourly_forecast_sensor_name"`
	DailyForecastSensorName   string `mapstructure:"daily_forecast_sensor_name"`
	RangeSensorName           string `mapstructure:"range_sensor_name"`
	CurrentDateTimeSensorName string `mapstructure:"current_date_time_sensor_name"`
	Timezone                  string `mapstructure:"timezone"`
}

func DefaultConfig() Config {
	return Config{
		URL:      "https://my-home-assistant.local:8123",
		Timezone: "Europe/London",
	}
}

// SensorName resolves the configured sensor entity id for a category. An
// unset name is an error so that a misconfigured category fails at call time.
func (c Config) SensorName(cat Category) (string, error) {
	var name string
	switch cat {
	case CategoryCurrent:
		name = c.CurrentSensorName
	case CategoryHourly:
		name = c.HourlyForecastSensorName
	case CategoryDaily:
		name = c.DailyForecastSensorName
	case CategoryRange:
		name = c.RangeSensorName
	case CategoryDateTime:
		name = c.CurrentDateTimeSensorName
	default:
		return "", fmt.Errorf("unknown weather category '%s'", cat)
	}
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("sensor name for '%s' is not set", cat)
	}
	return name, nil
}

// Location loads the configured timezone, used for localizing forecast times.
func (c Config) Location() (*time.Location, error) {
	if strings.TrimSpace(c.Timezone) == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	return loc, nil
}

// LoadConfig loads the weather config from a directory containing
// homeassistant.yaml, with HA_* environment variables taking precedence
// (HA_URL, HA_API_TOKEN, HA_CURRENT_SENSOR_NAME, ...).
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("homeassistant")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("HA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultConfig()
	v.SetDefault("url", defaults.URL)
	v.SetDefault("api_token", "")
	v.SetDefault("current_sensor_name", "")
	v.SetDefault("hourly_forecast_sensor_name", "")
	v.SetDefault("daily_forecast_sensor_name", "")
	v.SetDefault("range_sensor_name", "")
	v.SetDefault("current_date_time_sensor_name", "")
	v.SetDefault("timezone", defaults.Timezone)

	cfg := defaults
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		log.Println("homeassistant config not found, relying on env vars")
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
