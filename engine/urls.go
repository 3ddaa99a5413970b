package engine

import "net/url"

// resolveAgainst resolves a possibly relative reference against the
// page URL. Invalid references are returned unchanged.
func resolveAgainst(pageURL, ref string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return ref
	}
	resolved, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return resolved.String()
}

// sameHost reports whether rawURL shares a host with baseURL.
func sameHost(baseURL, rawURL string) bool {
	base, err := url.Parse(baseURL)
	if err != nil {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Host == base.Host
}

// domainOf returns the host of a URL, or "" if unparsable.
func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
