package probe

import (
	"regexp"
	"strings"
)

// DefaultIndicators are the substrings shown on the target's redeem-success
// screen. They are heuristics over rendered content, overridable in config.
var DefaultIndicators = []string{
	"Use Coupon Code given below",
	"Flat Rs. 100 Off",
	"Copy Code",
	"Start shopping",
}

// minIndicatorHits is how many indicators must appear before a page counts as
// a success. A single hit is too easy to trip on unrelated banner text.
const minIndicatorHits = 2

// Success reports whether a content snapshot looks like the redeem-success
// screen: at least minIndicatorHits of the indicators present,
// case-insensitive. Pure function of its inputs, so it is testable without a
// live target.
func Success(content string, indicators []string) bool {
	if content == "" || len(indicators) == 0 {
		return false
	}
	lc := strings.ToLower(content)

	hits := 0
	for _, ind := range indicators {
		if ind == "" {
			continue
		}
		if strings.Contains(lc, strings.ToLower(ind)) {
			hits++
			if hits >= minIndicatorHits {
				return true
			}
		}
	}
	return false
}

var codeTokenRe = regexp.MustCompile(`[A-Za-z0-9]{8,15}`)

// extractWindow bounds how far around the "Copy Code" marker we look for the
// displayed code.
const extractWindow = 400

// ExtractCode pulls the displayed coupon code out of a success-page snapshot:
// an 8–15 char alphanumeric token near the "Copy Code" marker, uppercased.
// Returns "" when nothing plausible is found.
func ExtractCode(content string) string {
	// The marker offset is only valid in the lowered string; ToLower can
	// change byte lengths, so the window is cut from lc, not content. The
	// token alphabet is ASCII, which ToLower leaves length-stable.
	lc := strings.ToLower(content)
	at := strings.Index(lc, "copy code")
	if at < 0 {
		return ""
	}

	lo := at - extractWindow
	if lo < 0 {
		lo = 0
	}
	hi := at + extractWindow
	if hi > len(lc) {
		hi = len(lc)
	}

	for _, tok := range codeTokenRe.FindAllString(lc[lo:hi], -1) {
		if strings.EqualFold(tok, "copycode") {
			continue
		}
		return strings.ToUpper(tok)
	}
	return ""
}
