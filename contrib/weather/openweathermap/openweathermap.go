// Package openweathermap implements the weather.Provider interface against
// the OpenWeatherMap current-weather API.
package openweathermap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	ollerrors "github.com/sweetpotato0/odialingua/errors"
	"github.com/sweetpotato0/odialingua/weather"
)

const apiURL = "https://api.openweathermap.org/data/2.5/weather"

// Provider fetches current conditions from OpenWeatherMap.
type Provider struct {
	apiKey string
	http   *http.Client
}

// New creates an OpenWeatherMap provider.
func New(apiKey string) *Provider {
	return &Provider{apiKey: apiKey, http: &http.Client{}}
}

type apiResponse struct {
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Name string `json:"name"`
}

// Current implements weather.Provider. Unknown locations return an error
// wrapping errors.ErrNotFound.
func (p *Provider) Current(ctx context.Context, location string) (*weather.Report, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("OpenWeatherMap API key not configured")
	}

	params := url.Values{}
	params.Set("q", location)
	params.Set("appid", p.apiKey)
	params.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, "GET", apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("location %q: %w", location, ollerrors.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenWeatherMap error (status %d): %s", resp.StatusCode, string(body))
	}

	var data apiResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(data.Weather) == 0 {
		return nil, fmt.Errorf("no weather data for %q", location)
	}

	name := data.Name
	if name == "" {
		name = location
	}
	return &weather.Report{
		Location:     name,
		Conditions:   data.Weather[0].Description,
		TemperatureC: data.Main.Temp,
		FeelsLikeC:   data.Main.FeelsLike,
		Humidity:     data.Main.Humidity,
	}, nil
}
