// Package pattern classifies child output as a transient, retryable failure.
package pattern

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DefaultPatterns are the transient-error signatures that are always active.
var DefaultPatterns = []string{
	`(?i)overloaded`,
	`(?i)HTTP\s*500`,
	`(?i)\b5\d\d\s*(Server\s*Error|Error)\b`,
	`(?i)status\s*code\s*=\s*5\d\d`,
	`(?i)Too\s*Many\s*Requests`,
	`(?i)\b429\b`,
	`(?i)ECONNRESET`,
	`(?i)ETIMEDOUT`,
	`(?i)Gateway\s*Timeout`,
	`(?i)upstream\s*timeout`,
	`(?i)temporary\s*failure`,
	`(?i)(fetch|network)\s*error`,
	`(?i)socket\s*hang\s*up`,
}

// Classifier decides whether a block of output indicates a transient failure.
type Classifier interface {
	Classify(text string) Verdict
}

// Verdict is the result of classifying output. The zero value is NotRetryable.
type Verdict struct {
	Retryable bool

	// Pattern is the source of the first pattern that matched.
	Pattern string

	// SuggestedDelay is a retry hint found in the text, valid when HasSuggestion is set.
	SuggestedDelay time.Duration
	HasSuggestion  bool

	// Reset is an announced reset clock time, set only when the text
	// carries no explicit delay. Resolving it needs a clock, so it is left
	// to the caller.
	Reset    Reset
	HasReset bool
}

// NotRetryable is the verdict for output that matched no pattern.
var NotRetryable = Verdict{}

// PatternError reports a pattern that was skipped during compilation.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("skipping pattern %q: empty", e.Pattern)
	}
	return fmt.Sprintf("skipping pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// Matcher is a Classifier backed by a list of compiled regular expressions.
type Matcher struct {
	regexes []*regexp.Regexp
}

// SplitList splits a pipe-separated pattern list, trimming whitespace and
// dropping empty entries.
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, "|") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Compile builds a Matcher from patterns, preserving their order.
// Empty or invalid patterns are skipped; each one is reported in the
// returned slice so the caller can warn about it. Compile never fails.
func Compile(patterns []string) (*Matcher, []error) {
	m := &Matcher{}
	var warnings []error
	for _, p := range patterns {
		if strings.TrimSpace(p) == "" {
			warnings = append(warnings, &PatternError{Pattern: p})
			continue
		}
		re, err := regexp.Compile(p)
		if err != nil {
			warnings = append(warnings, &PatternError{Pattern: p, Err: err})
			continue
		}
		m.regexes = append(m.regexes, re)
	}
	return m, warnings
}

// New compiles DefaultPatterns followed by extra.
func New(extra ...string) (*Matcher, []error) {
	all := make([]string, 0, len(DefaultPatterns)+len(extra))
	all = append(all, DefaultPatterns...)
	all = append(all, extra...)
	return Compile(all)
}

// Len returns the number of usable patterns.
func (m *Matcher) Len() int {
	return len(m.regexes)
}

// Classify scans text for any pattern. On a match the verdict is retryable
// and carries the retry hint found in the text, if any.
func (m *Matcher) Classify(text string) Verdict {
	for _, re := range m.regexes {
		if !re.MatchString(text) {
			continue
		}
		v := Verdict{Retryable: true, Pattern: re.String()}
		v.SuggestedDelay, v.HasSuggestion = ExtractHint(text)
		if !v.HasSuggestion {
			v.Reset, v.HasReset = ParseReset(text)
		}
		return v
	}
	return NotRetryable
}
