package weather

import (
	"testing"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("HA_URL", "http://hub.local:8123")
	t.Setenv("HA_API_TOKEN", "secret")
	t.Setenv("HA_CURRENT_SENSOR_NAME", "sensor.home_temp")
	t.Setenv("HA_TIMEZONE", "Europe/Paris")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.URL != "http://hub.local:8123" {
		t.Errorf("URL = %q", cfg.URL)
	}
	if cfg.APIToken != "secret" {
		t.Errorf("APIToken = %q", cfg.APIToken)
	}
	if cfg.CurrentSensorName != "sensor.home_temp" {
		t.Errorf("CurrentSensorName = %q", cfg.CurrentSensorName)
	}
	if cfg.Timezone != "Europe/Paris" {
		t.Errorf("Timezone = %q", cfg.Timezone)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Timezone != "Europe/London" {
		t.Errorf("default Timezone = %q", cfg.Timezone)
	}
	if cfg.URL != "https://my-home-assistant.local:8123" {
		t.Errorf("default URL = %q", cfg.URL)
	}
}

func TestSensorName(t *testing.T) {
	cfg := Config{CurrentSensorName: "sensor.home_temp"}

	name, err := cfg.SensorName(CategoryCurrent)
	if err != nil {
		t.Fatalf("SensorName(current): %v", err)
	}
	if name != "sensor.home_temp" {
		t.Errorf("name = %q", name)
	}

	if _, err := cfg.SensorName(CategoryHourly); err == nil {
		t.Error("expected error for unset hourly sensor")
	}
	if _, err := cfg.SensorName(Category("bogus")); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestLocation(t *testing.T) {
	if _, err := (Config{Timezone: "Europe/London"}).Location(); err != nil {
		t.Errorf("valid timezone: %v", err)
	}
	if loc, err := (Config{}).Location(); err != nil || loc == nil {
		t.Errorf("empty timezone should fall back to UTC, got %v, %v", loc, err)
	}
	if _, err := (Config{Timezone: "Mars/Olympus_Mons"}).Location(); err == nil {
		t.Error("expected error for bogus timezone")
	}
}
