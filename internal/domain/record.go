package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

const (
	// NoImage marks a row whose image cell had no <img>. It never leaves the
	// enrichment stage.
	NoImage = "no_image"

	// PlaceholderImageURL replaces NoImage (and empty images) after enrichment.
	PlaceholderImageURL = "https://upload.wikimedia.org/wikipedia/commons/thumb/0/0a/No-image-available.png/480px-No-image-available.png"
)

// RawStadium is one table row as produced by extraction. Capacity is still
// text with separators removed; Image may be NoImage.
type RawStadium struct {
	Rank     int    `json:"rank"`
	Stadium  string `json:"stadium"`
	Capacity string `json:"capacity"`
	Region   string `json:"region"`
	Country  string `json:"country"`
	City     string `json:"city"`
	Image    string `json:"image"`
	HomeTeam string `json:"home_team"`
}

// StadiumRecord is the finalized row written to the output file.
type StadiumRecord struct {
	Rank     int       `json:"rank" csv:"rank"`
	Stadium  string    `json:"stadium" csv:"stadium"`
	Capacity int       `json:"capacity" csv:"capacity"`
	Region   string    `json:"region" csv:"region"`
	Country  string    `json:"country" csv:"country"`
	City     string    `json:"city" csv:"city"`
	Image    string    `json:"image" csv:"image"`
	HomeTeam string    `json:"home_team" csv:"home_team"`
	Location *Location `json:"location" csv:"location"`
}

// Location is a WGS-84 latitude/longitude pair.
type Location struct {
	Lat float64
	Lon float64
}

// String renders the pair as "(lat, lon)".
func (l Location) String() string {
	return fmt.Sprintf("(%s, %s)", formatCoord(l.Lat), formatCoord(l.Lon))
}

// MarshalText implements encoding.TextMarshaler; used for the CSV column.
func (l Location) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText parses the "(lat, lon)" form written by MarshalText.
func (l *Location) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return eris.Errorf("location: malformed %q", s)
	}
	parts := strings.Split(s[1:len(s)-1], ",")
	if len(parts) != 2 {
		return eris.Errorf("location: malformed %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return eris.Wrapf(err, "location: latitude in %q", s)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return eris.Wrapf(err, "location: longitude in %q", s)
	}
	l.Lat, l.Lon = lat, lon
	return nil
}

// MarshalJSON encodes the pair as a two-element array.
func (l Location) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{l.Lat, l.Lon})
}

// UnmarshalJSON decodes a two-element array.
func (l *Location) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return eris.Wrap(err, "location: decode json")
	}
	l.Lat, l.Lon = pair[0], pair[1]
	return nil
}

func formatCoord(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
