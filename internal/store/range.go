package store

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var a1Re = regexp.MustCompile(`^([A-Z]+)([0-9]+)(?::([A-Z]+)([0-9]*))?$`)

// Range is the row span of an A1-notation range. EndRow is 0 when the range
// is open-ended ("A2:L").
type Range struct {
	StartRow int
	EndRow   int
}

// Rows is the number of rows a bounded range covers.
func (r Range) Rows() int {
	if r.EndRow == 0 {
		return 0
	}
	return r.EndRow - r.StartRow + 1
}

// ParseRange parses "A1:L", "A2:L500" or "A5". A sheet prefix
// ("AKTIVASI!A1:L") is ignored.
func ParseRange(spec string) (Range, error) {
	s := strings.ToUpper(strings.TrimSpace(spec))
	if i := strings.LastIndex(s, "!"); i >= 0 {
		s = s[i+1:]
	}
	m := a1Re.FindStringSubmatch(s)
	if m == nil {
		return Range{}, fmt.Errorf("invalid range %q", spec)
	}

	start, _ := strconv.Atoi(m[2])
	if start < 1 {
		return Range{}, fmt.Errorf("invalid range %q: rows start at 1", spec)
	}
	r := Range{StartRow: start}

	switch {
	case m[3] == "":
		r.EndRow = start
	case m[4] != "":
		end, _ := strconv.Atoi(m[4])
		if end < start {
			return Range{}, fmt.Errorf("invalid range %q: end before start", spec)
		}
		r.EndRow = end
	}
	return r, nil
}
