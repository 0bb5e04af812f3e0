package vetting

import "strings"

// suspiciousKeywords are terms that often appear in phishing URLs.
// Order matters: matches are reported in this order.
var suspiciousKeywords = []string{
	"login",
	"verify",
	"secure",
	"update",
	"account",
	"confirm",
	"validate",
	"authenticate",
	"signin",
	"sign-in",
	"signup",
	"sign-up",
	"password",
	"reset",
	"unlock",
	"suspended",
	"locked",
	"expired",
	"warning",
	"urgent",
	"action-required",
}

// suspiciousTLDs are top-level domains commonly used for fake websites.
var suspiciousTLDs = map[string]bool{
	".xyz":        true,
	".top":        true,
	".site":       true,
	".online":     true,
	".click":      true,
	".download":   true,
	".stream":     true,
	".gq":         true,
	".ml":         true,
	".cf":         true,
	".tk":         true,
	".ga":         true,
	".loan":       true,
	".review":     true,
	".accountant": true,
	".science":    true,
	".work":       true,
	".party":      true,
}

// MatchKeywords returns every suspicious keyword contained in the URL.
// The whole URL is scanned since keywords usually sit in the path or query.
func MatchKeywords(rawURL string) []string {
	lower := strings.ToLower(rawURL)

	found := []string{}
	for _, keyword := range suspiciousKeywords {
		if strings.Contains(lower, keyword) {
			found = append(found, keyword)
		}
	}
	return found
}

// IsSuspiciousTLD reports whether tld (with leading dot) is on the suspicious list.
func IsSuspiciousTLD(tld string) bool {
	if tld == "" {
		return false
	}
	return suspiciousTLDs[strings.ToLower(tld)]
}
