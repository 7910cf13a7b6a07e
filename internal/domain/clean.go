package domain

import (
	"strconv"
	"strings"
)

const (
	nbspToken      = "&nbsp"
	diamondMarker  = " ♦"
	formerlySuffix = " (formerly)"
)

// capacitySeparators drops thousands separators of both "99,354" and "80.000" styles.
var capacitySeparators = strings.NewReplacer(",", "", ".", "")

// CleanText removes wiki rendering artifacts from a cell's text. The steps run
// in a fixed order: trim, drop "&nbsp", drop " ♦", cut at the first "[", cut at
// " (formerly)", drop newlines. A removal can splice a new artifact together
// ("(form\nerly)", "&nb&nbspsp"), so the steps repeat until the text stops
// changing. That keeps CleanText(CleanText(s)) == CleanText(s).
func CleanText(text string) string {
	for {
		cleaned := cleanOnce(text)
		if cleaned == text {
			return cleaned
		}
		text = cleaned
	}
}

// cleanOnce never lengthens its input, so CleanText terminates.
func cleanOnce(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, nbspToken, "")
	text = strings.ReplaceAll(text, diamondMarker, "")
	if i := strings.Index(text, "["); i != -1 {
		text = text[:i]
	}
	if i := strings.Index(text, formerlySuffix); i != -1 {
		text = text[:i]
	}
	text = strings.ReplaceAll(text, "\n", "")
	return strings.TrimSpace(text)
}

// CityFromLocation keeps the first comma-separated segment of a cleaned
// location cell, e.g. "Pyongyang, North Korea" -> "Pyongyang".
func CityFromLocation(location string) string {
	city, _, _ := strings.Cut(CleanText(location), ",")
	return city
}

// NormalizeCapacity strips separators from cleaned capacity text without
// validating it. Validation happens in ParseCapacity.
func NormalizeCapacity(text string) string {
	return capacitySeparators.Replace(CleanText(text))
}

// ParseCapacity converts capacity text into a non-negative integer. Separators
// are removed first so both raw and normalized text are accepted.
func ParseCapacity(text string) (int, error) {
	normalized := capacitySeparators.Replace(strings.TrimSpace(text))
	n, err := strconv.Atoi(normalized)
	if err != nil {
		return 0, &TypeCoercionError{Field: "capacity", Value: text, Err: err}
	}
	if n < 0 {
		return 0, &TypeCoercionError{Field: "capacity", Value: text}
	}
	return n, nil
}

// ImageURL builds an absolute thumbnail URL from an <img> src attribute by
// keeping everything after the first "//" and prefixing https.
func ImageURL(src string) (string, bool) {
	_, rest, ok := strings.Cut(src, "//")
	if !ok || rest == "" {
		return "", false
	}
	return "https://" + rest, true
}

// DefaultImage swaps the no-image sentinel and empty values for the placeholder.
func DefaultImage(image string) string {
	switch image {
	case NoImage, "":
		return PlaceholderImageURL
	default:
		return image
	}
}
