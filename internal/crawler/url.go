package crawler

import "strings"

// NormalizeBaseURL trims whitespace, defaults the scheme to https and drops
// any trailing slash so endpoint paths can be appended directly.
func NormalizeBaseURL(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return ""
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	return strings.TrimRight(base, "/")
}
