package otp

import (
	"regexp"
	"strings"
)

var (
	nonDigit      = regexp.MustCompile(`\D`)
	sixDigitRun   = regexp.MustCompile(`\b\d{6}\b`)
	anyWhitespace = regexp.MustCompile(`\s+`)
)

// ExtractSixDigitCode finds a 6-digit verification code inside arbitrary
// noisy text. Returns "" when no code is present.
//
// The text is first normalized: non-breaking spaces become ordinary spaces,
// then every non-digit character becomes a space. The primary match requires
// a boundary-aligned run of exactly 6 digits, so phone numbers and order ids
// with 7+ digits are rejected. If that fails, the spacing is collapsed and
// the boundary match is retried, which recovers codes rendered with gaps
// between digits ("1 2 3 4 5 6") without leaking a substring of a longer run.
func ExtractSixDigitCode(text string) string {
	normalized := strings.ReplaceAll(text, "\u00a0", " ")
	normalized = nonDigit.ReplaceAllString(normalized, " ")

	if code := sixDigitRun.FindString(normalized); code != "" {
		return code
	}

	// Fallback for irregular spacing and HTML artifacts.
	collapsed := anyWhitespace.ReplaceAllString(normalized, "")
	if code := sixDigitRun.FindString(collapsed); code != "" {
		return code
	}

	return ""
}
