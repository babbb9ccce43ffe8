package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"social-analytics/models"
)

var (
	// countRegexp captures an abbreviated count such as "1.2K" or "3M"
	countRegexp = regexp.MustCompile(`^(-?[\d.]+)([kKmM])$`)
	// decimalReplacer strips currency, percent and grouping characters
	decimalReplacer = strings.NewReplacer("$", "", "%", "", ",", "", " ", "")
	// countReplacer strips grouping characters from counts
	countReplacer = strings.NewReplacer(",", "", " ", "")
)

// dateLayouts are tried in order by ParseDate.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"01/02/2006",
	"01/02/2006 15:04",
	"01/02/2006 15:04:05",
	"1/2/2006",
	"1/2/2006 15:04",
	"Jan 2, 2006",
	"January 2, 2006",
	"Mon, Jan 2, 2006",
	"Mon, Jan 02, 2006",
	"Jan 2, 2006 at 3:04 PM",
	time.RubyDate,
	"2006/01/02",
}

// FieldValue returns the first non-empty value among the given columns.
func FieldValue(rec models.RawRecord, aliases ...string) string {
	for _, a := range aliases {
		if v := strings.TrimSpace(rec[a]); v != "" {
			return v
		}
	}
	return ""
}

// ParseCount converts a cell to an integer count. It accepts grouping
// commas, K/M suffixes and decimal input (rounded). Anything else is 0.
//
//	"1,234" -> 1234
//	"1.2K"  -> 1200
//	"3.6"   -> 4
func ParseCount(raw string) int64 {
	s := countReplacer.Replace(strings.TrimSpace(raw))
	if s == "" {
		return 0
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}

	if m := countRegexp.FindStringSubmatch(s); len(m) == 3 {
		base, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0
		}
		mult := 1000.0
		if strings.EqualFold(m[2], "m") {
			mult = 1_000_000
		}
		return int64(math.Round(base * mult))
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int64(math.Round(f))
}

// ParseDecimal converts a currency or percentage cell to a float. Anything
// unparseable is 0.
func ParseDecimal(raw string) float64 {
	s := decimalReplacer.Replace(strings.TrimSpace(raw))
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ParseDate tries every known export layout and reports whether one matched.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// dayOf truncates t to its UTC calendar day.
func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
