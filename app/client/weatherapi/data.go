package weatherapi

import "github.com/samber/lo"

const unknown = "unknown"

// Forecast is the normalized current conditions plus today's forecast.
// Text fields default to "unknown" and numbers to zero.
type Forecast struct {
	Location  string
	Region    string
	Country   string
	LocalTime string

	ConditionText string
	TempC         float64
	FeelsLikeC    float64
	HumidityPct   int
	WindKph       float64
	WindDir       string

	MaxTempC        float64
	MinTempC        float64
	ChanceOfRainPct int
	Sunrise         string
	Sunset          string
}

type condition struct {
	Text *string `json:"text"`
}

type forecastResponse struct {
	Location *struct {
		Name      *string `json:"name"`
		Region    *string `json:"region"`
		Country   *string `json:"country"`
		LocalTime *string `json:"localtime"`
	} `json:"location"`
	Current *struct {
		TempC      *float64   `json:"temp_c"`
		FeelsLikeC *float64   `json:"feelslike_c"`
		Humidity   *int       `json:"humidity"`
		WindKph    *float64   `json:"wind_kph"`
		WindDir    *string    `json:"wind_dir"`
		Condition  *condition `json:"condition"`
	} `json:"current"`
	Forecast *struct {
		ForecastDay []struct {
			Day *struct {
				MaxTempC          *float64 `json:"maxtemp_c"`
				MinTempC          *float64 `json:"mintemp_c"`
				DailyChanceOfRain *int     `json:"daily_chance_of_rain"`
			} `json:"day"`
			Astro *struct {
				Sunrise *string `json:"sunrise"`
				Sunset  *string `json:"sunset"`
			} `json:"astro"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

type errorResponse struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func text(s *string) string {
	v := lo.FromPtrOr(s, "")
	if v == "" {
		return unknown
	}

	return v
}

// normalize resolves every optional field once so formatting code never has
// to check for presence.
func (r *forecastResponse) normalize(query string) *Forecast {
	result := &Forecast{
		Location:      query,
		Region:        unknown,
		Country:       unknown,
		LocalTime:     unknown,
		ConditionText: unknown,
		WindDir:       unknown,
		Sunrise:       unknown,
		Sunset:        unknown,
	}

	if loc := r.Location; loc != nil {
		result.Location = lo.FromPtrOr(loc.Name, query)
		result.Region = text(loc.Region)
		result.Country = text(loc.Country)
		result.LocalTime = text(loc.LocalTime)
	}

	if cur := r.Current; cur != nil {
		result.TempC = lo.FromPtrOr(cur.TempC, 0)
		result.FeelsLikeC = lo.FromPtrOr(cur.FeelsLikeC, result.TempC)
		result.HumidityPct = lo.FromPtrOr(cur.Humidity, 0)
		result.WindKph = lo.FromPtrOr(cur.WindKph, 0)
		result.WindDir = text(cur.WindDir)
		if cur.Condition != nil {
			result.ConditionText = text(cur.Condition.Text)
		}
	}

	// without a daily forecast the current reading stands in for high and low
	result.MaxTempC = result.TempC
	result.MinTempC = result.TempC

	if r.Forecast != nil && len(r.Forecast.ForecastDay) > 0 {
		today := r.Forecast.ForecastDay[0]
		if today.Day != nil {
			result.MaxTempC = lo.FromPtrOr(today.Day.MaxTempC, result.TempC)
			result.MinTempC = lo.FromPtrOr(today.Day.MinTempC, result.TempC)
			result.ChanceOfRainPct = lo.FromPtrOr(today.Day.DailyChanceOfRain, 0)
		}
		if today.Astro != nil {
			result.Sunrise = text(today.Astro.Sunrise)
			result.Sunset = text(today.Astro.Sunset)
		}
	}

	if result.Location == "" {
		result.Location = query
	}

	return result
}
