package domain

import (
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
)

const (
	// stadiumTableIndex selects the stadium list among the page's wikitables.
	stadiumTableIndex = 1
	stadiumColumns    = 7
)

// Column positions within a stadium row.
const (
	colStadium = iota
	colCapacity
	colRegion
	colCountry
	colCity
	colImage
	colHomeTeam
)

// NameRegistry assigns display names, suffixing repeated stadium names with
// their city. Counts are keyed by the cleaned raw name and span the whole
// extraction pass.
type NameRegistry struct {
	counts map[string]int
}

// NewNameRegistry returns an empty registry.
func NewNameRegistry() *NameRegistry {
	return &NameRegistry{counts: make(map[string]int)}
}

// Assign returns name on its first sighting and "<name>, <city>" afterwards.
func (r *NameRegistry) Assign(name, city string) string {
	r.counts[name]++
	if r.counts[name] == 1 {
		return name
	}
	return name + ", " + city
}

// Count reports how many times name has been assigned.
func (r *NameRegistry) Count(name string) int {
	return r.counts[name]
}

// ParseStadiumTable reads an HTML page and returns one RawStadium per data row
// of the stadium table. Any structural mismatch fails the whole page.
func ParseStadiumTable(page io.Reader) ([]RawStadium, error) {
	doc, err := goquery.NewDocumentFromReader(page)
	if err != nil {
		return nil, &ParseError{Reason: "read html", Err: err}
	}

	tables := doc.Find("table.wikitable")
	if tables.Length() <= stadiumTableIndex {
		return nil, &ParseError{Reason: fmt.Sprintf("found %d wikitable(s), need at least %d", tables.Length(), stadiumTableIndex+1)}
	}

	rows := tables.Eq(stadiumTableIndex).Find("tr")
	names := NewNameRegistry()
	stadiums := make([]RawStadium, 0, max(rows.Length()-1, 0))

	for i := 1; i < rows.Length(); i++ {
		s, err := parseRow(rows.Eq(i), i, names)
		if err != nil {
			return nil, err
		}
		stadiums = append(stadiums, s)
	}
	return stadiums, nil
}

func parseRow(row *goquery.Selection, rank int, names *NameRegistry) (RawStadium, error) {
	cells := row.Find("td")
	if cells.Length() < stadiumColumns {
		return RawStadium{}, &ParseError{
			Row:    rank,
			Reason: fmt.Sprintf("found %d cell(s), need %d", cells.Length(), stadiumColumns),
		}
	}
	cell := func(i int) string { return cells.Eq(i).Text() }

	name := CleanText(cell(colStadium))
	city := CityFromLocation(cell(colCity))

	image := NoImage
	if img := cells.Eq(colImage).Find("img").First(); img.Length() > 0 {
		src, _ := img.Attr("src")
		u, ok := ImageURL(src)
		if !ok {
			return RawStadium{}, &ParseError{Row: rank, Reason: fmt.Sprintf("image src %q has no host", src)}
		}
		image = u
	}

	return RawStadium{
		Rank:     rank,
		Stadium:  names.Assign(name, city),
		Capacity: NormalizeCapacity(cell(colCapacity)),
		Region:   CleanText(cell(colRegion)),
		Country:  CleanText(cell(colCountry)),
		City:     city,
		Image:    image,
		HomeTeam: CleanText(cell(colHomeTeam)),
	}, nil
}
