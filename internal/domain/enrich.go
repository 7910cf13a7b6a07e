package domain

import (
	"context"
	"errors"
	"log/slog"
)

// Geocoding passes, used as log attributes.
const (
	PassPrimary = "primary"
	PassRepair  = "repair"
)

// EnrichStats summarizes one enrichment run.
type EnrichStats struct {
	Matched    int // records holding a location after enrichment
	Misses     int // first-pass lookups without a match
	Failures   int // lookups that returned an error (any pass)
	Collisions int // records whose first-pass location duplicated an earlier one
	Repaired   int // collisions whose location was replaced by the city lookup
}

// EnrichStadiums turns extracted rows into finalized records: capacity is
// coerced to an integer, missing images get the placeholder, and locations
// are resolved with the geocoder, then collisions are repaired once.
//
// A capacity that does not parse fails the whole batch. Geocoder errors are
// logged and leave the location absent, unless ctx is done, in which case the
// batch fails with ctx.Err(). A nil geocoder skips lookups.
func EnrichStadiums(ctx context.Context, rows []RawStadium, geocoder Geocoder, logger *slog.Logger) ([]StadiumRecord, EnrichStats, error) {
	var stats EnrichStats

	records := make([]StadiumRecord, len(rows))
	for i, row := range rows {
		capacity, err := ParseCapacity(row.Capacity)
		if err != nil {
			var tce *TypeCoercionError
			if errors.As(err, &tce) {
				tce.Rank = row.Rank
			}
			return nil, stats, err
		}
		records[i] = StadiumRecord{
			Rank:     row.Rank,
			Stadium:  row.Stadium,
			Capacity: capacity,
			Region:   row.Region,
			Country:  row.Country,
			City:     row.City,
			Image:    DefaultImage(row.Image),
			HomeTeam: row.HomeTeam,
		}
	}

	if geocoder == nil {
		return records, stats, nil
	}

	// The stadium name, not the city, is the first-pass term.
	for i := range records {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		loc, err := lookup(ctx, geocoder, records[i].Stadium, records[i].Country, PassPrimary, logger)
		switch {
		case ctx.Err() != nil:
			return nil, stats, ctx.Err()
		case err != nil:
			stats.Failures++
		case loc == nil:
			stats.Misses++
		}
		records[i].Location = loc
	}

	collisions := DuplicateLocations(records)
	stats.Collisions = len(collisions)
	for _, i := range collisions {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		loc, err := lookup(ctx, geocoder, records[i].City, records[i].Country, PassRepair, logger)
		if ctx.Err() != nil {
			return nil, stats, ctx.Err()
		}
		if err != nil {
			stats.Failures++
			continue
		}
		// A miss keeps the first-pass location.
		if loc != nil {
			records[i].Location = loc
			stats.Repaired++
		}
	}

	for _, r := range records {
		if r.Location != nil {
			stats.Matched++
		}
	}
	return records, stats, nil
}

// DuplicateLocations returns the indexes of records whose location equals the
// location of an earlier record. The first holder of each pair is not
// included, and records without a location never collide.
func DuplicateLocations(records []StadiumRecord) []int {
	seen := make(map[Location]struct{}, len(records))
	var dups []int
	for i, r := range records {
		if r.Location == nil {
			continue
		}
		if _, ok := seen[*r.Location]; ok {
			dups = append(dups, i)
			continue
		}
		seen[*r.Location] = struct{}{}
	}
	return dups
}

func lookup(ctx context.Context, geocoder Geocoder, term, country, pass string, logger *slog.Logger) (*Location, error) {
	result, err := geocoder.ForwardGeocode(ctx, term, country)
	if err != nil {
		logger.Warn("geocoding failed",
			"pass", pass,
			"term", term,
			"country", country,
			"error", err,
		)
		return nil, err
	}
	if !result.Matched {
		logger.Debug("geocoding miss", "pass", pass, "term", term, "country", country)
	}
	return result.Location(), nil
}
