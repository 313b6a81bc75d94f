package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/myproject/ha-weather-agent/homeassistant"
)

// Service shapes hub sensor states into the JSON documents the agent tools
// return. Every operation yields a JSON string: either the shaped result or
// {"error": "<message>"} — failures never cross the tool boundary as faults.
type Service struct {
	fetcher homeassistant.StateFetcher
	cfg     Config
	loc     *time.Location
	log     *zap.Logger
}

type ServiceOption func(s *Service)

func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) {
		s.log = l
	}
}

func NewService(fetcher homeassistant.StateFetcher, cfg Config, opts ...ServiceOption) (*Service, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("state fetcher is required")
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	s := &Service{
		fetcher: fetcher,
		cfg:     cfg,
		loc:     loc,
		log:     zap.L(),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// errorResult converts a failure into the uniform {"error": ...} document.
func (s *Service) errorResult(msg string) string {
	s.log.Error("weather operation failed", zap.String("reason", msg))
	b, _ := json.Marshal(struct {
		Error string `json:"error"`
	}{Error: msg})
	return string(b)
}

func (s *Service) result(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return s.errorResult(fmt.Sprintf("encode result: %v", err))
	}
	return string(b)
}

func fetchErrorMessage(name string, err error) string {
	var apiErr *homeassistant.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return fmt.Sprintf("Network error fetching '%s': %v", name, err)
}

// fetchState resolves the sensor for a category and reads its state. The
// second return value is a non-empty error message when anything went wrong.
func (s *Service) fetchState(ctx context.Context, cat Category) (*homeassistant.EntityState, string, string) {
	name, err := s.cfg.SensorName(cat)
	if err != nil {
		return nil, "", err.Error()
	}
	st, err := s.fetcher.GetState(ctx, name)
	if err != nil {
		return nil, name, fetchErrorMessage(name, err)
	}
	return st, name, ""
}

func attributesOf(st *homeassistant.EntityState, name string) (gjson.Result, error) {
	if len(st.Attributes) == 0 {
		return gjson.Result{}, fmt.Errorf("sensor '%s' has no attributes", name)
	}
	attrs := gjson.ParseBytes(st.Attributes)
	if !attrs.IsObject() {
		return gjson.Result{}, fmt.Errorf("sensor '%s' has no attributes", name)
	}
	return attrs, nil
}

func (s *Service) fetchAttributes(ctx context.Context, cat Category) (gjson.Result, string, string) {
	st, name, errMsg := s.fetchState(ctx, cat)
	if errMsg != "" {
		return gjson.Result{}, name, errMsg
	}
	attrs, err := attributesOf(st, name)
	if err != nil {
		return gjson.Result{}, name, err.Error()
	}
	return attrs, name, ""
}

// CurrentConditions returns the flat scalar readings of the current weather
// sensor as a JSON string.
func (s *Service) CurrentConditions(ctx context.Context) string {
	attrs, name, errMsg := s.fetchAttributes(ctx, CategoryCurrent)
	if errMsg != "" {
		return s.errorResult(errMsg)
	}
	cur, err := parseCurrent(attrs)
	if err != nil {
		return s.errorResult(fmt.Sprintf("sensor '%s': %v", name, err))
	}
	return s.result(cur)
}

// HourlyForecast returns the hourly forecast entries under a "forecast" key.
func (s *Service) HourlyForecast(ctx context.Context) string {
	return s.forecast(ctx, CategoryHourly)
}

// DailyForecast returns the daily forecast entries under a "forecast" key.
func (s *Service) DailyForecast(ctx context.Context) string {
	return s.forecast(ctx, CategoryDaily)
}

func (s *Service) forecast(ctx context.Context, cat Category) string {
	attrs, name, errMsg := s.fetchAttributes(ctx, cat)
	if errMsg != "" {
		return s.errorResult(errMsg)
	}
	entries, err := forecastAttr(attrs)
	if err != nil {
		return s.errorResult(fmt.Sprintf("sensor '%s': %v", name, err))
	}
	return s.result(Forecast{Forecast: localizeForecastTimes(entries, s.loc, s.log)})
}

// RangeStatistics returns the precomputed min/max/average readings as flat
// top-level keys.
func (s *Service) RangeStatistics(ctx context.Context) string {
	attrs, name, errMsg := s.fetchAttributes(ctx, CategoryRange)
	if errMsg != "" {
		return s.errorResult(errMsg)
	}
	stats, err := parseRange(attrs)
	if err != nil {
		return s.errorResult(fmt.Sprintf("sensor '%s': %v", name, err))
	}
	return s.result(stats)
}

// CurrentDateTime returns the date/time sensor state localized to the
// configured zone. An unparseable state is passed through as-is.
func (s *Service) CurrentDateTime(ctx context.Context) string {
	st, _, errMsg := s.fetchState(ctx, CategoryDateTime)
	if errMsg != "" {
		return s.errorResult(errMsg)
	}
	return s.result(s.shapeDateTime(st))
}

func (s *Service) shapeDateTime(st *homeassistant.EntityState) DateTime {
	value := st.State
	if formatted, ok := localizeTime(st.State, s.loc); ok {
		value = formatted
	} else {
		s.log.Warn("could not parse date/time sensor state", zap.String("state", st.State))
	}
	return DateTime{CurrentDateTime: value, Timezone: s.cfg.Timezone}
}

// FullReport combines all categories into one document: current readings with
// nested ranges plus both forecasts. The five sensors are independent, so they
// are fetched concurrently; the first failure produces the uniform error
// result.
type fullReport struct {
	CurrentDateTime        string          `json:"current_date_time"`
	CurrentTimezone        string          `json:"current_timezone"`
	CurrentWeatherReadings currentReadings `json:"current_weather_readings"`
	WeatherForecast        forecastSection `json:"weather_forecast"`
}

type currentReadings struct {
	Temperature float64         `json:"temperature"`
	Humidity    float64         `json:"humidity"`
	Pressure    float64         `json:"pressure"`
	Illuminance float64         `json:"illuminance"`
	Ranges      RangeStatistics `json:"current_weather_maximum_minimum_ranges"`
}

type forecastSection struct {
	Hourly json.RawMessage `json:"hourly_weather_forecast"`
	Daily  json.RawMessage `json:"daily_weather_forecast"`
}

func (s *Service) FullReport(ctx context.Context) string {
	cats := []Category{CategoryCurrent, CategoryRange, CategoryHourly, CategoryDaily, CategoryDateTime}
	states := make([]*homeassistant.EntityState, len(cats))
	names := make([]string, len(cats))
	errMsgs := make([]string, len(cats))

	pool, err := ants.NewPool(len(cats))
	if err != nil {
		return s.errorResult(fmt.Sprintf("start worker pool: %v", err))
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, cat := range cats {
		i, cat := i, cat
		wg.Add(1)
		task := func() {
			defer wg.Done()
			states[i], names[i], errMsgs[i] = s.fetchState(ctx, cat)
		}
		if err := pool.Submit(task); err != nil {
			task()
		}
	}
	wg.Wait()

	for _, msg := range errMsgs {
		if msg != "" {
			return s.errorResult(msg)
		}
	}

	currentAttrs, err := attributesOf(states[0], names[0])
	if err != nil {
		return s.errorResult(err.Error())
	}
	cur, err := parseCurrent(currentAttrs)
	if err != nil {
		return s.errorResult(fmt.Sprintf("sensor '%s': %v", names[0], err))
	}

	rangeAttrs, err := attributesOf(states[1], names[1])
	if err != nil {
		return s.errorResult(err.Error())
	}
	stats, err := parseRange(rangeAttrs)
	if err != nil {
		return s.errorResult(fmt.Sprintf("sensor '%s': %v", names[1], err))
	}

	forecasts := make([]json.RawMessage, 2)
	for i, idx := range []int{2, 3} {
		attrs, err := attributesOf(states[idx], names[idx])
		if err != nil {
			return s.errorResult(err.Error())
		}
		entries, err := forecastAttr(attrs)
		if err != nil {
			return s.errorResult(fmt.Sprintf("sensor '%s': %v", names[idx], err))
		}
		forecasts[i] = localizeForecastTimes(entries, s.loc, s.log)
	}

	dt := s.shapeDateTime(states[4])

	return s.result(fullReport{
		CurrentDateTime: dt.CurrentDateTime,
		CurrentTimezone: s.cfg.Timezone,
		CurrentWeatherReadings: currentReadings{
			Temperature: cur.Temperature,
			Humidity:    cur.Humidity,
			Pressure:    cur.Pressure,
			Illuminance: cur.Illuminance,
			Ranges:      *stats,
		},
		WeatherForecast: forecastSection{
			Hourly: forecasts[0],
			Daily:  forecasts[1],
		},
	})
}
