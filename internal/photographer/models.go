package photographer

import "time"

// GeoPoint is a WGS84 coordinate.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Profile is the photographer-specific data attached to an account.
// CurrentLocation mirrors the last realtime location broadcast; Rating is
// nil until the first review lands.
type Profile struct {
	UserID          string
	PortfolioURLs   []string
	Specialties     []string
	HourlyRate      float64
	City            string
	CurrentLocation *GeoPoint
	Rating          *float64
	TotalBookings   int

	CreatedAt time.Time
	UpdatedAt time.Time
}
