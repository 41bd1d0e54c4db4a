package validate

import (
	"net/url"
	"strings"
)

// TrustedDomains answers whether a URL's host is pre-registered as
// inherently credible. Trusted hosts bypass some liveness penalties.
// Read-only at request time.
type TrustedDomains struct {
	exact    map[string]bool
	suffixes []string
	tlds     map[string]bool
}

// NewTrustedDomains builds a classifier from a configured domain list.
// Plain entries ("wikipedia.org") match the host and any subdomain;
// TLD entries without a dot ("gov", "edu") match the host's last label.
func NewTrustedDomains(domains []string) *TrustedDomains {
	t := &TrustedDomains{
		exact: make(map[string]bool),
		tlds:  make(map[string]bool),
	}
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if !strings.Contains(d, ".") {
			t.tlds[d] = true
			continue
		}
		t.exact[d] = true
		t.suffixes = append(t.suffixes, "."+d)
	}
	return t
}

// IsTrusted reports whether the URL's host is on the trusted table.
func (t *TrustedDomains) IsTrusted(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return false
	}

	if t.exact[host] {
		return true
	}
	for _, suffix := range t.suffixes {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}

	if idx := strings.LastIndex(host, "."); idx >= 0 {
		if t.tlds[host[idx+1:]] {
			return true
		}
	}
	// UK academic institutions
	if strings.HasSuffix(host, ".ac.uk") {
		return true
	}
	return false
}
