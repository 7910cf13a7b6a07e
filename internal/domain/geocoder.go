package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
// Matched is false when the provider had no answer for the query.
type GeocodingResult struct {
	Lat         float64
	Lon         float64
	DisplayName string
	Matched     bool
}

// Location returns the coordinate pair, or nil when the lookup did not match.
func (r GeocodingResult) Location() *Location {
	if !r.Matched {
		return nil
	}
	return &Location{Lat: r.Lat, Lon: r.Lon}
}

// Geocoder resolves free-text places to coordinates.
type Geocoder interface {
	// ForwardGeocode looks up "<term>, <country>".
	ForwardGeocode(ctx context.Context, term, country string) (GeocodingResult, error)
}
