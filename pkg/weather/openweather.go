package weather

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/coolcity/heatscan/internal/model"
	"github.com/coolcity/heatscan/internal/resilience"
)

// currentResponse is the JSON response from the OpenWeather current API.
type currentResponse struct {
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Clouds struct {
		All float64 `json:"all"`
	} `json:"clouds"`
}

// forecastResponse is the JSON response from the OpenWeather 5-day forecast API.
type forecastResponse struct {
	List []struct {
		DtTxt string `json:"dt_txt"`
		Main  struct {
			Temp     float64 `json:"temp"`
			Humidity float64 `json:"humidity"`
		} `json:"main"`
	} `json:"list"`
}

// forecastSteps caps the forecast at 5 days, four steps per day.
const forecastSteps = 20

// CurrentWeather returns the current conditions at a point. Without an API
// key, or when the upstream request fails, the mock snapshot is returned so
// downstream consumers never see a weather error.
func (c *client) CurrentWeather(ctx context.Context, pt model.GeoPoint) (*model.WeatherConditions, error) {
	if c.apiKey == "" {
		return mockCurrentWeather(), nil
	}

	body, err := c.get(ctx, "/weather", pt)
	if err != nil {
		zap.L().Warn("weather: current fetch failed, serving mock data", zap.Error(err))
		return mockCurrentWeather(), nil
	}

	var resp currentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		zap.L().Warn("weather: unparsable current response, serving mock data", zap.Error(err))
		return mockCurrentWeather(), nil
	}

	cond := &model.WeatherConditions{
		Temperature: resp.Main.Temp,
		FeelsLike:   resp.Main.FeelsLike,
		Humidity:    resp.Main.Humidity,
		WindSpeed:   resp.Wind.Speed,
		Cloudiness:  resp.Clouds.All,
	}
	if len(resp.Weather) > 0 {
		cond.Description = resp.Weather[0].Description
	}
	return cond, nil
}

// HeatForecast returns the 5-day forecast with a heat index computed per step.
func (c *client) HeatForecast(ctx context.Context, pt model.GeoPoint) ([]model.HeatForecastPoint, error) {
	if c.apiKey == "" {
		return mockHeatForecast(), nil
	}

	body, err := c.get(ctx, "/forecast", pt)
	if err != nil {
		zap.L().Warn("weather: forecast fetch failed, serving mock data", zap.Error(err))
		return mockHeatForecast(), nil
	}

	var resp forecastResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		zap.L().Warn("weather: unparsable forecast response, serving mock data", zap.Error(err))
		return mockHeatForecast(), nil
	}

	steps := resp.List
	if len(steps) > forecastSteps {
		steps = steps[:forecastSteps]
	}

	forecast := make([]model.HeatForecastPoint, 0, len(steps))
	for _, item := range steps {
		ts, err := time.Parse("2006-01-02 15:04:05", item.DtTxt)
		if err != nil {
			continue
		}
		forecast = append(forecast, model.HeatForecastPoint{
			Time:      ts,
			HeatIndex: HeatIndex(item.Main.Temp, item.Main.Humidity),
		})
	}
	return forecast, nil
}

// get performs a rate-limited, retried GET against the OpenWeather API.
func (c *client) get(ctx context.Context, path string, pt model.GeoPoint) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "weather: rate limit")
	}

	params := url.Values{
		"lat":   {strconv.FormatFloat(pt.Lat, 'f', -1, 64)},
		"lon":   {strconv.FormatFloat(pt.Lng, 'f', -1, 64)},
		"appid": {c.apiKey},
		"units": {"metric"},
	}
	reqURL := c.baseURL + path + "?" + params.Encode()

	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "weather: build request")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, resilience.NewTransientError(err, 0)
		}
		defer resp.Body.Close() //nolint:errcheck

		if resp.StatusCode != http.StatusOK {
			err := eris.Errorf("weather: api returned status %d", resp.StatusCode)
			if resilience.IsTransientHTTPStatus(resp.StatusCode) {
				return nil, resilience.NewTransientError(err, resp.StatusCode)
			}
			return nil, err
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, resilience.NewTransientError(eris.Wrap(err, "weather: read body"), 0)
		}
		return body, nil
	})
}

// mockCurrentWeather returns a fixed warm-season snapshot.
func mockCurrentWeather() *model.WeatherConditions {
	return &model.WeatherConditions{
		Temperature: 28.5,
		FeelsLike:   31.2,
		Humidity:    65,
		WindSpeed:   3.2,
		Cloudiness:  40,
		Description: "partly cloudy",
	}
}

// mockHeatForecast returns a deterministic 5-day forecast ramping gently
// upward, four steps per day.
func mockHeatForecast() []model.HeatForecastPoint {
	base := time.Date(2024, time.July, 19, 6, 0, 0, 0, time.UTC)
	forecast := make([]model.HeatForecastPoint, 0, forecastSteps)
	for i := 0; i < forecastSteps; i++ {
		temp := 25.0 + float64(i%4)*2 + float64(i/4)*0.5
		humidity := 60.0 + float64(i%3)*5
		forecast = append(forecast, model.HeatForecastPoint{
			Time:      base.Add(time.Duration(i/4)*24*time.Hour + time.Duration(i%4)*6*time.Hour),
			HeatIndex: HeatIndex(temp, humidity),
		})
	}
	return forecast
}
