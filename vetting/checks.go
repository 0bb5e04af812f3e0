package vetting

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

// DomainInfo is what the analysis knows about the URL's host.
type DomainInfo struct {
	Domain   string `json:"domain"`
	TLD      string `json:"tld"`
	HasHTTPS bool   `json:"has_https"`
}

//
// URL NORMALIZATION
//

// NormalizeURL prepends https:// when the input has no http(s) scheme.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return "https://" + raw
}

//
// DOMAIN PARSING
//

// ParseDomain extracts the registrable domain, public suffix and scheme
// security of rawURL. It never fails: the scheme and the host are read
// independently, and whatever cannot be read comes back empty.
// Internationalized domains are reported in Unicode; see LookupName.
func ParseDomain(rawURL string) DomainInfo {
	info := DomainInfo{
		HasHTTPS: strings.EqualFold(schemeOf(rawURL), "https"),
	}

	host := hostOf(rawURL)
	if host == "" {
		return info
	}

	if net.ParseIP(host) != nil {
		info.Domain = host
		return info
	}

	registrable, suffix := splitHost(host)
	if suffix == "" {
		info.Domain = toDisplay(registrable)
		return info
	}

	info.Domain = toDisplay(registrable + "." + suffix)
	info.TLD = "." + toDisplay(suffix)
	return info
}

// LookupName is the ASCII form of the domain, as registries expect it.
func (d DomainInfo) LookupName() string {
	if d.Domain == "" {
		return ""
	}
	ascii, err := idna.Lookup.ToASCII(d.Domain)
	if err != nil {
		return d.Domain
	}
	return ascii
}

// schemeOf returns the text before the first "://" when it is a valid scheme.
func schemeOf(rawURL string) string {
	i := strings.Index(rawURL, "://")
	if i <= 0 {
		return ""
	}
	scheme := strings.TrimSpace(rawURL[:i])
	for j, c := range scheme {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case j > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return ""
		}
	}
	return scheme
}

// hostOf returns the normalized host of rawURL. A URL that net/url rejects
// (bad escape in the path, bad port) still has its authority read by hand.
func hostOf(rawURL string) string {
	if parsed, err := url.Parse(rawURL); err == nil {
		return normalizeHost(parsed.Hostname())
	}

	host := authorityOf(rawURL)
	if strings.ContainsAny(host, " %\\<>\"{}|^`") {
		return ""
	}
	return normalizeHost(host)
}

// authorityOf cuts the host out of a URL by hand: the text between "://" and
// the first of "/?#", without userinfo and port.
func authorityOf(rawURL string) string {
	rest := rawURL
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+len("://"):]
	}
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		rest = rest[:i]
	}
	if i := strings.LastIndex(rest, "@"); i >= 0 {
		rest = rest[i+1:]
	}

	if strings.HasPrefix(rest, "[") {
		if i := strings.Index(rest, "]"); i > 0 {
			return rest[1:i]
		}
		return ""
	}
	if i := strings.Index(rest, ":"); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	host = strings.TrimRight(host, ".")
	if host == "" {
		return ""
	}

	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return host
	}
	return ascii
}

func toDisplay(name string) string {
	unicode, err := idna.Display.ToUnicode(name)
	if err != nil {
		return name
	}
	return unicode
}

// splitHost returns the label left of the ICANN public suffix and the suffix.
// Private suffixes (blogspot.com and friends) are not treated as suffixes and
// a host under an unlisted TLD has no suffix at all.
func splitHost(host string) (string, string) {
	labels := strings.Split(host, ".")

	for i := 0; i < len(labels); i++ {
		candidate := strings.Join(labels[i:], ".")
		suffix, icann := publicsuffix.PublicSuffix(candidate)
		if !icann || suffix != candidate {
			continue
		}
		if i == 0 {
			return "", candidate
		}
		return labels[i-1], candidate
	}

	return labels[len(labels)-1], ""
}
