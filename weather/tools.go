package weather

import (
	"context"

	"github.com/myproject/ha-weather-agent/tools"
)

// The weather operations take no caller-supplied arguments: everything they
// need comes from the configuration. Handlers never return an error — a
// failure is already encoded as an {"error": ...} document for the model.

func noArgs() map[string]any {
	return tools.ObjectSchema(map[string]any{})
}

func NewCurrentWeatherTool(svc *Service) tools.Tool {
	return tools.New(
		"get_current_weather",
		func(ctx context.Context, _ string) (string, error) {
			return svc.CurrentConditions(ctx), nil
		},
		tools.WithDescription("Get the current weather readings (temperature, humidity, pressure, illuminance) from Home Assistant."),
		tools.WithParameters(noArgs()),
	)
}

func NewHourlyForecastTool(svc *Service) tools.Tool {
	return tools.New(
		"get_hourly_weather_forecast",
		func(ctx context.Context, _ string) (string, error) {
			return svc.HourlyForecast(ctx), nil
		},
		tools.WithDescription("Get the hourly weather forecast from Home Assistant."),
		tools.WithParameters(noArgs()),
	)
}

func NewDailyForecastTool(svc *Service) tools.Tool {
	return tools.New(
		"get_daily_weather_forecast",
		func(ctx context.Context, _ string) (string, error) {
			return svc.DailyForecast(ctx), nil
		},
		tools.WithDescription("Get the daily weather forecast from Home Assistant."),
		tools.WithParameters(noArgs()),
	)
}

func NewWeatherRangesTool(svc *Service) tools.Tool {
	return tools.New(
		"get_weather_ranges",
		func(ctx context.Context, _ string) (string, error) {
			return svc.RangeStatistics(ctx), nil
		},
		tools.WithDescription("Get minimum, maximum and average readings for temperature, humidity and pressure."),
		tools.WithParameters(noArgs()),
	)
}

func NewCurrentDateTimeTool(svc *Service) tools.Tool {
	return tools.New(
		"get_current_date_time",
		func(ctx context.Context, _ string) (string, error) {
			return svc.CurrentDateTime(ctx), nil
		},
		tools.WithDescription("Get the current local date and time at the home."),
		tools.WithParameters(noArgs()),
	)
}

func NewFullReportTool(svc *Service) tools.Tool {
	return tools.New(
		"get_full_weather_report",
		func(ctx context.Context, _ string) (string, error) {
			return svc.FullReport(ctx), nil
		},
		tools.WithDescription("Get a combined weather report: current readings with min/max/average ranges plus the hourly and daily forecasts."),
		tools.WithParameters(noArgs()),
	)
}

// AllTools returns one tool per weather operation, ready to register on an
// agent.
func AllTools(svc *Service) []tools.Tool {
	return []tools.Tool{
		NewCurrentWeatherTool(svc),
		NewHourlyForecastTool(svc),
		NewDailyForecastTool(svc),
		NewWeatherRangesTool(svc),
		NewCurrentDateTimeTool(svc),
		NewFullReportTool(svc),
	}
}
