package otp

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var relativeAge = regexp.MustCompile(`(?i)\b(\d+)\s*(seconds?|secs?|minutes?|mins?|hours?|hrs?|days?)\s+ago\b`)

var secondsAge = regexp.MustCompile(`(?i)\b(\d+)\s*(?:seconds?|secs?)\s+ago\b`)

// Timestamp layouts tried in order when resolving absolute times. mail.tm
// reports RFC 3339; the others cover relay pages that render bare datetimes.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ParseRelativeAge converts a "<n> <unit> ago" label into the absolute
// instant it refers to, relative to now. The second return is false when the
// text does not match or the unit is unrecognized; callers must treat that
// as "unknown recency", not "now".
func ParseRelativeAge(text string, now time.Time) (time.Time, bool) {
	m := relativeAge.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, false
	}

	var unit time.Duration
	switch strings.TrimSuffix(strings.ToLower(m[2]), "s") {
	case "second", "sec":
		unit = time.Second
	case "minute", "min":
		unit = time.Minute
	case "hour", "hr":
		unit = time.Hour
	case "day":
		unit = 24 * time.Hour
	default:
		return time.Time{}, false
	}

	return now.Add(-time.Duration(n) * unit), true
}

// RelativeSeconds reports the N of an "N second(s) ago" label. Labels in any
// other unit do not match; this is the primitive behind the freshness gate.
func RelativeSeconds(text string) (int, bool) {
	m := secondsAge.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Field names probed, in order, when resolving a record's timestamp.
var timeFieldOrder = []string{"createdAt", "updatedAt", "timestamp", "date", "receivedAt", "sentAt"}

// FirstValidTime inspects the ordered timestamp field candidates of a
// structured record and returns the first value that parses as a date.
func FirstValidTime(fields map[string]string) (time.Time, bool) {
	for _, name := range timeFieldOrder {
		raw, ok := fields[name]
		if !ok || raw == "" {
			continue
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
