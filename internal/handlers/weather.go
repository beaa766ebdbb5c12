package handlers

import (
	"context"
	"html/template"
	"net/http"

	"postboard/internal/logging"
	"postboard/internal/models"
	"postboard/internal/weather"
)

// WeatherClient is satisfied by *weather.Client.
type WeatherClient interface {
	Current(ctx context.Context, city weather.City) (*models.CurrentWeather, error)
}

type WeatherHandler struct {
	Client    WeatherClient
	Templates *template.Template
	Err       *ErrorHandler
}

// Show renders current conditions for ?city=, falling back to the default
// city for anything not in the table.
func (h *WeatherHandler) Show(w http.ResponseWriter, r *http.Request) {
	city := weather.Resolve(r.URL.Query().Get("city"))

	current, err := h.Client.Current(r.Context(), city)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Str("city", city.Name).Msg("weather lookup failed")
		h.Err.Render(w, r, http.StatusBadGateway, "Weather service is unavailable, try again later")
		return
	}

	renderPage(w, r, h.Templates, http.StatusOK, map[string]interface{}{
		"Page":    "weather",
		"Weather": current,
		"Cities":  weather.Cities,
	})
}
