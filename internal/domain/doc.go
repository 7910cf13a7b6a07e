// Package domain models football stadium rows scraped from the Wikipedia
// "List of association football stadiums by capacity" page.
//
// # Data Source
//
// The page carries several tables with the "wikitable" class. The stadium list
// is the second one (index 1); the first is a short summary. Each data row has
// exactly seven cells, in order:
//
//	Stadium | Capacity | Region | Country | City | Images | Home team(s)
//
// The header row uses <th> cells and is skipped. A page that no longer has a
// second wikitable, or a row with fewer than seven <td> cells, is rejected
// with a [ParseError] rather than repaired.
//
// # Wiki Markup Artifacts
//
// Cell text carries rendering leftovers that [CleanText] strips, in order:
//
//	"&nbsp"         literal entity token left by escaped markup
//	" ♦"            marker for stadiums hosting a national team
//	"[...]"         footnote references; text is cut at the first "["
//	" (formerly)"   historic-name suffix; text is cut at its first occurrence
//	"\n"            embedded line breaks
//
// Because the cut at "[" runs first, a name such as "Foo [a] (formerly)" never
// reaches the "(formerly)" check.
//
// Capacities are human formatted ("99,354", "80.000", "82,500[3]"). Thousands
// separators of either locale are removed during extraction and the residue is
// parsed as an integer during enrichment; anything non-numeric is fatal.
//
// # Naming
//
// Stadium names are not unique on the page (for example several "Estadio
// Municipal" rows). The first occurrence keeps its name and every later one is
// rewritten as "<name>, <city>". See [NameRegistry].
//
// # Images
//
// Thumbnails are protocol-relative ("//upload.wikimedia.org/..."). They are
// made absolute with an https scheme. Rows without an image carry [NoImage]
// until enrichment swaps in [PlaceholderImageURL].
//
// # Coordinates
//
// Coordinates come from a free-text geocoder queried with "<term>, <country>".
// The first pass uses the stadium name as the term. Records whose coordinates
// duplicate an earlier record's are looked up once more using the city.
package domain
