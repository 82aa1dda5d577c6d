package cookie

import (
	"net"
	"strings"
)

// platformSuffixes are hosting platforms whose customer sites live one
// label below the platform domain. For these, the customer's own label is
// part of the cookie scope, so three trailing labels are kept instead of
// two.
var platformSuffixes = []string{
	"wpengine.com",
}

// ScopeFor derives the cookie domain scope from a request host: the host
// with one leading subdomain label stripped, so the cookie is readable on
// every sibling subdomain. Hosts that are already a bare domain, IP
// addresses, and single-label hosts are returned unchanged. Any port is
// dropped.
func ScopeFor(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if net.ParseIP(host) != nil {
		return host
	}

	labels := strings.Split(host, ".")
	keep := 2
	for _, suffix := range platformSuffixes {
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			keep = 3
			break
		}
	}
	if len(labels) <= keep {
		return host
	}
	return strings.Join(labels[len(labels)-keep:], ".")
}
