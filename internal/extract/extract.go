package extract

import "strings"

// Extract returns the trimmed text enclosed by rule.Pre and rule.Post in
// haystack, or "" when the rule does not match.
//
// Post is only searched for after the end of the first Pre occurrence.
// Both delimiters must be non-empty and together shorter than haystack.
func Extract(haystack string, rule Rule) string {
	if haystack == "" || rule.Pre == "" || rule.Post == "" ||
		len(rule.Pre)+len(rule.Post) >= len(haystack) {
		return ""
	}

	preAt := strings.Index(haystack, rule.Pre)
	if preAt < 0 {
		return ""
	}
	afterPre := preAt + len(rule.Pre)

	postOffset := strings.Index(haystack[afterPre:], rule.Post)
	if postOffset < 0 {
		return ""
	}
	postAt := afterPre + postOffset

	start := afterPre
	if rule.KeepPre {
		start = preAt
	}
	end := postAt
	if rule.KeepPost {
		end = postAt + len(rule.Post)
	}
	if start < 0 || end > len(haystack) || start >= end {
		return ""
	}

	return strings.TrimSpace(haystack[start:end])
}
