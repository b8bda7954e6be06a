package weather

import (
	"chatrouter/app/client/weatherapi"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	msgAskLocation    = "Which city or place would you like the weather for?"
	msgNotConfigured  = "Weather lookups are not configured on this server, so I can't check the forecast right now."
	msgUnknownPlace   = "I couldn't find a place called %q. Could you check the spelling or try a nearby city?"
	msgProviderFailed = "Sorry, I couldn't reach the weather service for %s right now. Please try again in a moment."
)

func formatTemp(c float64) string {
	return strconv.FormatFloat(math.Round(c*10)/10, 'f', -1, 64) + "°C"
}

func placeName(f *weatherapi.Forecast) string {
	parts := []string{f.Location}
	if f.Country != "unknown" && f.Country != f.Location {
		parts = append(parts, f.Country)
	}

	return strings.Join(parts, ", ")
}

func formatReport(f *weatherapi.Forecast) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("**Weather in %s**\n\n", placeName(f)))
	sb.WriteString(fmt.Sprintf("- Condition: %s\n", f.ConditionText))
	sb.WriteString(fmt.Sprintf("- Temperature: %s (feels like %s)\n", formatTemp(f.TempC), formatTemp(f.FeelsLikeC)))
	sb.WriteString(fmt.Sprintf("- Today: high %s, low %s, %d%% chance of rain\n", formatTemp(f.MaxTempC), formatTemp(f.MinTempC), f.ChanceOfRainPct))
	sb.WriteString(fmt.Sprintf("- Humidity: %d%%\n", f.HumidityPct))
	sb.WriteString(fmt.Sprintf("- Wind: %s km/h %s\n", strconv.FormatFloat(f.WindKph, 'f', -1, 64), f.WindDir))
	sb.WriteString(fmt.Sprintf("- Sunrise / sunset: %s / %s\n", f.Sunrise, f.Sunset))
	sb.WriteString(fmt.Sprintf("- Local time: %s", f.LocalTime))

	return sb.String()
}
