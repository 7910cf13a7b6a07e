// Package validate checks a finalized stadium batch for integrity: ranks run
// 1..n in order, display names are unique, capacities are non-negative, every
// image is a real URL, and locations are either absent or finite coordinates.
package validate

import (
	"fmt"
	"math"
	"strings"

	"github.com/couchcryptid/stadium-data-etl/internal/domain"
)

// Check names.
const (
	CheckRank     = "rank"
	CheckName     = "unique_name"
	CheckCapacity = "capacity"
	CheckImage    = "image"
	CheckLocation = "location"
)

// Violation is one failed check on one record.
type Violation struct {
	Rank    int
	Check   string
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("rank %d: %s: %s", v.Rank, v.Check, v.Message)
}

// Report collects the violations found in a batch.
type Report struct {
	Records    int
	Violations []Violation
}

// Passed reports whether the batch had no violations.
func (r Report) Passed() bool { return len(r.Violations) == 0 }

func (r *Report) errorf(rank int, check, format string, args ...any) {
	r.Violations = append(r.Violations, Violation{Rank: rank, Check: check, Message: fmt.Sprintf(format, args...)})
}

// Records validates a batch in output order.
func Records(records []domain.StadiumRecord) Report {
	report := Report{Records: len(records)}
	seen := make(map[string]int, len(records))

	for i, r := range records {
		if r.Rank != i+1 {
			report.errorf(r.Rank, CheckRank, "position %d holds rank %d", i+1, r.Rank)
		}
		if first, ok := seen[r.Stadium]; ok {
			report.errorf(r.Rank, CheckName, "%q already used by rank %d", r.Stadium, first)
		} else {
			seen[r.Stadium] = r.Rank
		}
		if r.Capacity < 0 {
			report.errorf(r.Rank, CheckCapacity, "negative capacity %d", r.Capacity)
		}
		switch {
		case r.Image == "":
			report.errorf(r.Rank, CheckImage, "empty image")
		case r.Image == domain.NoImage:
			report.errorf(r.Rank, CheckImage, "unreplaced %q sentinel", domain.NoImage)
		case !strings.HasPrefix(r.Image, "https://"):
			report.errorf(r.Rank, CheckImage, "image %q is not an https URL", r.Image)
		}
		if loc := r.Location; loc != nil {
			if !finite(loc.Lat) || !finite(loc.Lon) || math.Abs(loc.Lat) > 90 || math.Abs(loc.Lon) > 180 {
				report.errorf(r.Rank, CheckLocation, "coordinates %s out of range", loc)
			}
		}
	}
	return report
}

// CSV decodes a written output file and validates it.
func CSV(data []byte) (Report, error) {
	records, err := domain.DecodeCSV(data)
	if err != nil {
		return Report{}, err
	}
	return Records(records), nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
