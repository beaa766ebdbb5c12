package models

// CurrentWeather is what the weather page shows for one city.
type CurrentWeather struct {
	City        string
	Temperature float64
	Windspeed   float64
	Weathercode int
}
