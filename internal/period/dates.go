// Package period parses stored date labels and filters records into
// daily, weekly and monthly windows.
package period

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultTimezone is the regional timezone used when none is configured.
const DefaultTimezone = "Asia/Jakarta"

// LoadLocation resolves a timezone name. Unknown names fall back to WIB
// (UTC+7).
func LoadLocation(name string) *time.Location {
	l, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("WIB", 7*60*60)
	}
	return l
}

var monthNames = []string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

var dayNames = []string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}

// months maps lowercased Indonesian and English month names and their
// common abbreviations to calendar months.
var months = map[string]time.Month{
	"januari": time.January, "january": time.January, "jan": time.January,
	"februari": time.February, "february": time.February, "feb": time.February, "pebruari": time.February,
	"maret": time.March, "march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"mei": time.May, "may": time.May,
	"juni": time.June, "june": time.June, "jun": time.June,
	"juli": time.July, "july": time.July, "jul": time.July,
	"agustus": time.August, "august": time.August, "agu": time.August, "agt": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"oktober": time.October, "october": time.October, "okt": time.October, "oct": time.October,
	"november": time.November, "nopember": time.November, "nov": time.November,
	"desember": time.December, "december": time.December, "des": time.December, "dec": time.December,
}

// FormatLabel renders t as the stored long-form date, e.g.
// "Rabu, 14 Oktober 2026".
func FormatLabel(t time.Time) string {
	return fmt.Sprintf("%s, %d %s %d", dayNames[t.Weekday()], t.Day(), monthNames[t.Month()-1], t.Year())
}

// ParseLabel parses a stored date label back into a calendar date at
// midnight in loc. The weekday prefix is optional and ignored. Labels that
// do not parse return false.
func ParseLabel(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, ","); i >= 0 {
		s = s[i+1:]
	}
	parts := strings.Fields(s)
	if len(parts) != 3 {
		return time.Time{}, false
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, false
	}
	month, ok := months[strings.ToLower(strings.TrimSuffix(parts[1], "."))]
	if !ok {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil || year < 1000 {
		return time.Time{}, false
	}

	t := time.Date(year, month, day, 0, 0, 0, 0, loc)
	// Reject overflow such as "31 Februari", which time.Date normalizes.
	if t.Day() != day || t.Month() != month {
		return time.Time{}, false
	}
	return t, true
}

var anchorLayouts = []string{"2006-01-02", "02/01/2006", "2/1/2006", "02-01-2006", "2-1-2006"}

// ParseAnchor parses a user-supplied anchor date in loc: YYYY-MM-DD,
// DD/MM/YYYY or DD-MM-YYYY, or a long-form label.
func ParseAnchor(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range anchorLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	if t, ok := ParseLabel(s, loc); ok {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
