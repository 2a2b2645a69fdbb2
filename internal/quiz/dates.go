package quiz

import (
	"regexp"
	"strconv"
	"time"
)

var (
	yearPattern    = regexp.MustCompile(`\d{4}`)
	ddmmyyyy       = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)
	isoDatePattern = regexp.MustCompile(`^(\d{4})[-/](\d{2})[-/](\d{2})$`)
)

// YearOf returns the first four-digit run in s, or 0 when there is none.
func YearOf(s string) int {
	m := yearPattern.FindString(s)
	if m == "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.Year()
		}
		return 0
	}
	y, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return y
}

// FormatDate renders s as DD-MM-YYYY when it can be understood and returns it
// unchanged otherwise.
func FormatDate(s string) string {
	if s == "" || ddmmyyyy.MatchString(s) {
		return s
	}
	if m := isoDatePattern.FindStringSubmatch(s); m != nil {
		return m[3] + "-" + m[2] + "-" + m[1]
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format("02-01-2006")
	}
	return s
}
