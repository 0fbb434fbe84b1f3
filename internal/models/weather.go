package models

// Coordinates is a geographic position in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Location is the geocoding match a lookup resolved to.
type Location struct {
	Name        string `json:"name"`
	Country     string `json:"country,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
	Admin1      string `json:"admin1,omitempty"`
}

// CurrentConditions is the current-weather reading for a position.
type CurrentConditions struct {
	Temperature float64 `json:"temperature"`
	WindSpeed   float64 `json:"windSpeed"`
	Humidity    float64 `json:"humidity"`
	WeatherCode int     `json:"weatherCode"`
	Time        string  `json:"time"`
}

// Units holds the unit labels reported by the forecast upstream.
type Units struct {
	Temperature string `json:"temperature"`
	WindSpeed   string `json:"windSpeed"`
	Humidity    string `json:"humidity"`
}

// Condition is the human-readable rendering of a weather code.
type Condition struct {
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// WeatherResult is the response for one city lookup. Built once after both
// upstream calls succeed and never mutated afterwards.
type WeatherResult struct {
	City                 string            `json:"city"`
	Location             Location          `json:"location"`
	Coordinates          Coordinates       `json:"coordinates"`
	Current              CurrentConditions `json:"current"`
	Condition            Condition         `json:"condition"`
	Timezone             string            `json:"timezone"`
	TimezoneAbbreviation string            `json:"timezoneAbbreviation,omitempty"`
	Units                Units             `json:"units"`
}

// Label returns "Name, Country", or just the name when country is unknown.
func (l Location) Label() string {
	if l.Name == "" || l.Country == "" {
		return l.Name
	}
	return l.Name + ", " + l.Country
}
