// Package scrape defines the record shape handed over by the external
// site-scraping adapter. The adapter itself lives outside this service; this
// package only fixes the boundary so the rest of the code never probes
// loosely shaped payloads.
package scrape

import (
	"regexp"
	"strconv"
)

// Recipe is a scraped recipe payload. Every field is optional; absent values
// stay at their zero value.
type Recipe struct {
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Ingredients  []string          `json:"ingredients"`
	Instructions string            `json:"instructions"`
	PrepTime     *int              `json:"prep_time"`
	CookTime     *int              `json:"cook_time"`
	TotalTime    *int              `json:"total_time"`
	Yields       string            `json:"yields"`
	CanonicalURL string            `json:"canonical_url"`
	Image        string            `json:"image"`
	Author       string            `json:"author"`
	Cuisine      string            `json:"cuisine"`
	Category     string            `json:"category"`
	Keywords     []string          `json:"keywords"`
	SiteName     string            `json:"site_name"`
	Language     string            `json:"language"`
	Nutrients    map[string]string `json:"nutrients"`
}

var (
	intRe     = regexp.MustCompile(`(\d+)`)
	numericRe = regexp.MustCompile(`([0-9.]+)`)
)

// ParseServings extracts the serving count from a yields string such as
// "4 servings". Returns nil when no number is present.
func ParseServings(yields string) *int {
	m := intRe.FindString(yields)
	if m == "" {
		return nil
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &n
}

// ParseNumeric extracts the leading numeric value from a nutrient string such
// as "256 calories" or "19 grams". Returns nil when no parseable number is
// present.
func ParseNumeric(value string) *float64 {
	m := numericRe.FindString(value)
	if m == "" {
		return nil
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil
	}
	return &f
}
