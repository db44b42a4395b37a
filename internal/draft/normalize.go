package draft

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are the stored-date forms accepted from the record store.
// The calendar date is taken as written; no time zone conversion is applied.
var dateLayouts = []string{
	time.DateOnly,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// NormalizeDate returns s as YYYY-MM-DD, or "" if s is empty or not a date.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.DateOnly)
		}
	}
	return ""
}

var timePattern = regexp.MustCompile(`^(\d{1,2}):(\d{1,2})(?::\d{1,2}(?:\.\d+)?)?$`)

// NormalizeTime returns s as zero-padded HH:MM, dropping seconds and
// fractions, or "" if s is empty or not a time of day.
func NormalizeTime(s string) string {
	m := timePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return ""
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	if h > 23 || min > 59 {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", h, min)
}
