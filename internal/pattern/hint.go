package pattern

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// "Retry-After: 30" (seconds), as printed when HTTP headers are surfaced.
	retryAfterPattern = regexp.MustCompile(`(?i)Retry-After:\s*(\d+)\b`)

	// "Retrying in 5 seconds", "retry in 1.5s", "retrying in 800 ms"
	retryingInPattern = regexp.MustCompile(`(?i)\bretry(?:ing)?\s+in\s+(\d+(?:\.\d+)?)\s*(milliseconds?|ms|seconds?|secs?|s|minutes?|mins?|m)?\b`)
)

// ExtractHint looks for a retry delay suggested by the output itself.
// The earliest explicit delay in the text wins.
func ExtractHint(text string) (time.Duration, bool) {
	best := -1
	var delay time.Duration

	if loc := retryAfterPattern.FindStringSubmatchIndex(text); loc != nil {
		if n, err := strconv.ParseUint(text[loc[2]:loc[3]], 10, 32); err == nil {
			best = loc[0]
			delay = time.Duration(n) * time.Second
		}
	}

	if loc := retryingInPattern.FindStringSubmatchIndex(text); loc != nil && (best < 0 || loc[0] < best) {
		unit := ""
		if loc[4] >= 0 {
			unit = text[loc[4]:loc[5]]
		}
		if d, ok := toDuration(text[loc[2]:loc[3]], unit); ok {
			best = loc[0]
			delay = d
		}
	}

	if best < 0 {
		return 0, false
	}
	return delay, true
}

func toDuration(value, unit string) (time.Duration, bool) {
	n, err := strconv.ParseFloat(value, 64)
	if err != nil || n < 0 {
		return 0, false
	}

	scale := time.Second
	switch u := strings.ToLower(unit); {
	case u == "ms" || strings.HasPrefix(u, "millisecond"):
		scale = time.Millisecond
	case u == "m" || strings.HasPrefix(u, "min"):
		scale = time.Minute
	}

	f := n * float64(scale)
	if f > math.MaxInt64 {
		return time.Duration(math.MaxInt64), true
	}
	return time.Duration(f).Round(time.Millisecond), true
}
