package weather

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"
)

// CurrentConditions is the shaped result for the current weather category.
type CurrentConditions struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Pressure    float64 `json:"pressure"`
	Illuminance float64 `json:"illuminance"`
}

// RangeStatistics is the shaped result for the range category: precomputed
// min/max/average per metric, flattened.
type RangeStatistics struct {
	TemperatureHigh    float64 `json:"temperature_high"`
	TemperatureLow     float64 `json:"temperature_low"`
	TemperatureAverage float64 `json:"temperature_average"`
	HumidityHigh       float64 `json:"humidity_high"`
	HumidityLow        float64 `json:"humidity_low"`
	HumidityAverage    float64 `json:"humidity_average"`
	PressureHigh       float64 `json:"pressure_high"`
	PressureLow        float64 `json:"pressure_low"`
	PressureAverage    float64 `json:"pressure_average"`
}

// Forecast wraps a list of per-period forecast entries, passed through from
// the hub unchanged apart from time localization.
type Forecast struct {
	Forecast json.RawMessage `json:"forecast"`
}

// DateTime is the shaped result for the current date/time sensor.
type DateTime struct {
	CurrentDateTime string `json:"current_date_time"`
	Timezone        string `json:"timezone"`
}

func numberAttr(attrs gjson.Result, key string) (float64, error) {
	v := attrs.Get(key)
	if !v.Exists() {
		return 0, fmt.Errorf("missing attribute '%s'", key)
	}
	if v.Type != gjson.Number {
		return 0, fmt.Errorf("attribute '%s' is not a number", key)
	}
	return v.Float(), nil
}

func parseCurrent(attrs gjson.Result) (*CurrentConditions, error) {
	var cur CurrentConditions
	var err error
	if cur.Temperature, err = numberAttr(attrs, "temperature"); err != nil {
		return nil, err
	}
	if cur.Humidity, err = numberAttr(attrs, "humidity"); err != nil {
		return nil, err
	}
	if cur.Pressure, err = numberAttr(attrs, "pressure"); err != nil {
		return nil, err
	}
	if cur.Illuminance, err = numberAttr(attrs, "illuminance"); err != nil {
		return nil, err
	}
	return &cur, nil
}

func parseRange(attrs gjson.Result) (*RangeStatistics, error) {
	var stats RangeStatistics
	fields := []struct {
		key string
		dst *float64
	}{
		{"max_temperature", &stats.TemperatureHigh},
		{"min_temperature", &stats.TemperatureLow},
		{"avg_temperature", &stats.TemperatureAverage},
		{"max_humidity", &stats.HumidityHigh},
		{"min_humidity", &stats.HumidityLow},
		{"avg_humidity", &stats.HumidityAverage},
		{"max_pressure", &stats.PressureHigh},
		{"min_pressure", &stats.PressureLow},
		{"avg_pressure", &stats.PressureAverage},
	}
	for _, f := range fields {
		v, err := numberAttr(attrs, f.key)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}
	return &stats, nil
}

func forecastAttr(attrs gjson.Result) (json.RawMessage, error) {
	v := attrs.Get("forecast")
	if !v.Exists() {
		return nil, fmt.Errorf("missing attribute 'forecast'")
	}
	if !v.IsArray() {
		return nil, fmt.Errorf("attribute 'forecast' is not a list")
	}
	return json.RawMessage(v.Raw), nil
}

// hub time layouts, most common first
var timeLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.RFC3339,
}

// localizeTime parses a hub timestamp, attaches the configured zone and
// re-emits it as RFC 3339. Commas occasionally show up in template sensor
// output and are stripped first.
func localizeTime(s string, loc *time.Location) (string, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.Format(time.RFC3339), true
		}
	}
	return "", false
}

// localizeForecastTimes rewrites the datetime/time field of each forecast
// entry in the configured zone. Entries whose timestamps cannot be parsed are
// left untouched.
func localizeForecastTimes(raw json.RawMessage, loc *time.Location, log *zap.Logger) json.RawMessage {
	doc := []byte(raw)
	idx := 0
	gjson.ParseBytes(raw).ForEach(func(_, entry gjson.Result) bool {
		for _, key := range []string{"datetime", "time"} {
			v := entry.Get(key)
			if v.Type != gjson.String {
				continue
			}
			formatted, ok := localizeTime(v.String(), loc)
			if !ok {
				log.Warn("could not parse forecast timestamp",
					zap.String("key", key),
					zap.String("value", v.String()),
				)
				continue
			}
			updated, err := sjson.SetBytes(doc, strconv.Itoa(idx)+"."+key, formatted)
			if err != nil {
				log.Warn("could not rewrite forecast timestamp", zap.Error(err))
				continue
			}
			doc = updated
		}
		idx++
		return true
	})
	return doc
}
