package pattern

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Usage-limit messages name a wall-clock reset time instead of a delay:
// "resets 3pm (America/New_York)", "resets 10:30 (UTC)".
var resetPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)resets?\s+(\d{1,2}:\d{2}\s*(?:am|pm))\s*\(([^)]+)\)`),
	regexp.MustCompile(`(?i)resets?\s+(\d{1,2}\s*(?:am|pm))\s*\(([^)]+)\)`),
	regexp.MustCompile(`(?i)resets?\s+(\d{1,2}:\d{2})\s*\(([^)]+)\)`),
	regexp.MustCompile(`(?i)resets?\s+[A-Za-z]+\s+\d{1,2},?\s+\d{4},?\s+(\d{1,2}(?::\d{2})?\s*(?:am|pm))\s*\(([^)]+)\)`),
}

// Reset is a daily clock time at which a usage limit lifts.
type Reset struct {
	Hour   int // 0-23
	Minute int
	Zone   string // IANA name, validated by ParseReset
}

func (r Reset) String() string {
	return fmt.Sprintf("%02d:%02d (%s)", r.Hour, r.Minute, r.Zone)
}

// Next returns the first instant strictly after from at which the reset
// happens.
func (r Reset) Next(from time.Time) time.Time {
	loc, err := time.LoadLocation(r.Zone)
	if err != nil {
		loc = time.UTC
	}
	local := from.In(loc)
	at := time.Date(local.Year(), local.Month(), local.Day(), r.Hour, r.Minute, 0, 0, loc)
	if !at.After(local) {
		at = at.AddDate(0, 0, 1)
	}
	return at
}

// Until returns the time left from now until the reset.
func (r Reset) Until(now time.Time) time.Duration {
	return r.Next(now).Sub(now).Round(time.Millisecond)
}

// ParseReset finds the first reset announcement in text.
func ParseReset(text string) (Reset, bool) {
	for _, re := range resetPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		r, err := parseClock(strings.TrimSpace(m[1]), strings.TrimSpace(m[2]))
		if err != nil {
			continue
		}
		return r, true
	}
	return Reset{}, false
}

// parseClock reads a clock such as "3pm", "3:30 pm" or "15:30" in the named
// zone.
func parseClock(clock, zone string) (Reset, error) {
	if _, err := time.LoadLocation(zone); err != nil {
		return Reset{}, fmt.Errorf("invalid timezone %q: %w", zone, err)
	}

	s := strings.ToLower(strings.Join(strings.Fields(clock), ""))
	pm := strings.HasSuffix(s, "pm")
	am := strings.HasSuffix(s, "am")
	s = strings.TrimSuffix(strings.TrimSuffix(s, "pm"), "am")

	hourStr, minuteStr, hasMinute := strings.Cut(s, ":")
	if !am && !pm && !hasMinute {
		return Reset{}, fmt.Errorf("24-hour format requires colon: %s", clock)
	}

	hour, err := strconv.Atoi(hourStr)
	if err != nil {
		return Reset{}, fmt.Errorf("invalid hour: %s", hourStr)
	}
	minute := 0
	if hasMinute {
		if minute, err = strconv.Atoi(minuteStr); err != nil {
			return Reset{}, fmt.Errorf("invalid minute: %s", minuteStr)
		}
	}

	if (am || pm) && (hour < 1 || hour > 12) {
		return Reset{}, fmt.Errorf("invalid time: %s", clock)
	}
	switch {
	case pm && hour != 12:
		hour += 12
	case am && hour == 12:
		hour = 0
	}
	if hour > 23 || minute > 59 {
		return Reset{}, fmt.Errorf("invalid time: %s", clock)
	}
	return Reset{Hour: hour, Minute: minute, Zone: zone}, nil
}
