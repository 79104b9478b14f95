package pattern

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReset(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		reset Reset
		found bool
	}{
		{"hour pm", "5-hour limit reached ∙ resets 3pm (UTC)", Reset{15, 0, "UTC"}, true},
		{"hour and minute pm", "resets 3:15 pm (UTC)", Reset{15, 15, "UTC"}, true},
		{"24-hour clock", "Limit resets 10:30 (UTC)", Reset{10, 30, "UTC"}, true},
		{"midnight", "resets 12am (UTC)", Reset{0, 0, "UTC"}, true},
		{"noon", "resets 12pm (UTC)", Reset{12, 0, "UTC"}, true},
		{"other zone", "resets 3:15pm (America/New_York)", Reset{15, 15, "America/New_York"}, true},
		{"with date", "resets Jan 15, 2026, 3pm (UTC)", Reset{15, 0, "UTC"}, true},
		{"unknown zone", "resets 3pm (Mars/Olympus)", Reset{}, false},
		{"out of range", "resets 25:00 (UTC)", Reset{}, false},
		{"meridiem hour out of range", "resets 13pm (UTC)", Reset{}, false},
		{"bare hour without meridiem", "resets 10 (UTC)", Reset{}, false},
		{"no reset", "usage limit reached", Reset{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := ParseReset(tt.text)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.reset, r)
		})
	}
}

func TestResetUntil(t *testing.T) {
	from := time.Date(2026, time.January, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		reset Reset
		delay time.Duration
	}{
		{"later today", Reset{15, 0, "UTC"}, 5 * time.Hour},
		{"half hour", Reset{10, 30, "UTC"}, 30 * time.Minute},
		{"already passed rolls to tomorrow", Reset{9, 0, "UTC"}, 23 * time.Hour},
		{"exactly now rolls to tomorrow", Reset{10, 0, "UTC"}, 24 * time.Hour},
		{"midnight", Reset{0, 0, "UTC"}, 14 * time.Hour},
		{"other zone", Reset{15, 15, "America/New_York"}, 10*time.Hour + 15*time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.delay, tt.reset.Until(from))
		})
	}
}

func TestExtractHint_IgnoresResetClock(t *testing.T) {
	_, ok := ExtractHint("limit hit, resets 3pm (UTC)")
	assert.False(t, ok)
}

func TestClassify_ExplicitDelayBeatsReset(t *testing.T) {
	m, _ := New(`(?i)limit`)

	v := m.Classify("limit hit, resets 3pm (UTC). Retrying in 5s")
	require.True(t, v.HasSuggestion)
	assert.Equal(t, 5*time.Second, v.SuggestedDelay)
	assert.False(t, v.HasReset)
}

func TestClassify_UsageLimitReset(t *testing.T) {
	m, warnings := New(`(?i)usage limit`)
	require.Empty(t, warnings)

	text := "Claude usage limit reached. Your limit resets 11am (UTC)."
	v := m.Classify(text)
	require.True(t, v.Retryable)
	assert.False(t, v.HasSuggestion)
	require.True(t, v.HasReset)
	assert.Equal(t, Reset{11, 0, "UTC"}, v.Reset)

	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, v, m.Classify(text), "classification must not depend on the clock")
}
