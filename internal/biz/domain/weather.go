package domain

// WeatherCategory is a coarse weather condition
type WeatherCategory string

const (
	WeatherClear        WeatherCategory = "clear"
	WeatherClouds       WeatherCategory = "clouds"
	WeatherRain         WeatherCategory = "rain"
	WeatherDrizzle      WeatherCategory = "drizzle"
	WeatherThunderstorm WeatherCategory = "thunderstorm"
	WeatherSnow         WeatherCategory = "snow"
	WeatherFog          WeatherCategory = "fog"
	WeatherUnknown      WeatherCategory = "unknown"
)

// Known reports whether the category carries usable information
func (w WeatherCategory) Known() bool {
	return w != "" && w != WeatherUnknown
}

// Location is a coordinate used for weather lookups
type Location struct {
	Lat float64
	Lon float64
}
