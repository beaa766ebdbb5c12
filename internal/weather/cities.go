package weather

// City is one selectable location.
type City struct {
	Name string
	Lat  float64
	Lon  float64
}

const DefaultCity = "Kanazawa"

// Cities lists the selectable cities in display order.
var Cities = []City{
	{Name: "Kanazawa", Lat: 36.59, Lon: 136.60},
	{Name: "Tokyo", Lat: 35.68, Lon: 139.76},
	{Name: "Osaka", Lat: 34.69, Lon: 135.50},
	{Name: "Sapporo", Lat: 43.06, Lon: 141.35},
	{Name: "Naha", Lat: 26.21, Lon: 127.68},
}

// Resolve returns the named city, falling back to DefaultCity for an empty
// or unknown name. Matching is exact.
func Resolve(name string) City {
	var fallback City
	for _, c := range Cities {
		if c.Name == name {
			return c
		}
		if c.Name == DefaultCity {
			fallback = c
		}
	}
	return fallback
}
