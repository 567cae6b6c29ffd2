// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bulletin

import (
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

// YearRange names one academic catalog year, e.g. "2024-2025".
type YearRange string

// DefaultBaseURL is the directory the university publishes bulletins under.
const DefaultBaseURL = "https://www.aamu.edu/academics/catalogs/_documents/undergraduate-bulletins/"

// DefaultOutDir is the relative directory bulletins are saved to.
const DefaultOutDir = "Pdfstore"

// yearRanges is the fixed download order. Some entries span several years
// because the university issued one bulletin for the whole period.
var yearRanges = []YearRange{
	"2024-2025",
	"2023-2024",
	"2022-2023",
	"2021-2022",
	"2020-2021",
	"2019-2020",
	"2018-2019",
	"2017-2018",
	"2016-2017",
	"2015-2016",
	"2014-2015",
	"2013-2014",
	"2012-2013",
	"2011-2012",
	"2008-2011",
	"2006-2008",
	"2003-2005",
	"2000-2002",
}

// yearRangePattern matches "YYYY-YYYY".
var yearRangePattern = regexp.MustCompile(`^\d{4}-\d{4}$`)

// YearRanges returns a copy of the fixed range list in download order.
func YearRanges() []YearRange {
	return slices.Clone(yearRanges)
}

// ParseYearRange validates the "YYYY-YYYY" form. It does not require the
// range to be one of the known bulletins.
func ParseYearRange(s string) (YearRange, error) {
	s = strings.TrimSpace(s)
	if !yearRangePattern.MatchString(s) {
		return "", fmt.Errorf("invalid year range %q: want YYYY-YYYY", s)
	}
	if s[:4] > s[5:] {
		return "", fmt.Errorf("invalid year range %q: start after end", s)
	}
	return YearRange(s), nil
}

// Known reports whether r is in the fixed range list.
func Known(r YearRange) bool {
	return slices.Contains(yearRanges, r)
}

// Select returns the known ranges named in names, in download order.
// An empty names selects every range. Unknown or malformed names are an error.
func Select(names []string) ([]YearRange, error) {
	if len(names) == 0 {
		return YearRanges(), nil
	}
	want := make(map[YearRange]bool, len(names))
	for _, n := range names {
		r, err := ParseYearRange(n)
		if err != nil {
			return nil, err
		}
		if !Known(r) {
			return nil, fmt.Errorf("unknown year range %q", r)
		}
		want[r] = true
	}
	var out []YearRange
	for _, r := range yearRanges {
		if want[r] {
			out = append(out, r)
		}
	}
	return out, nil
}

// URL returns the download URL for r under base. An empty base uses
// DefaultBaseURL.
func URL(base string, r YearRange) string {
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + "undergraduate-bulletin-" + string(r) + ".pdf"
}

// FileName returns the local file name for r.
func FileName(r YearRange) string {
	return "Bulletin-" + string(r) + ".pdf"
}

// Path returns the local file path for r under dir. An empty dir uses
// DefaultOutDir.
func Path(dir string, r YearRange) string {
	if dir == "" {
		dir = DefaultOutDir
	}
	return filepath.Join(dir, FileName(r))
}
