package proxy

import (
	"net/http"
	"net/url"
	"strings"
)

// origin returns the base URL object links are built on: the configured
// public URL, else the scheme and host the request arrived on.
func (p *Proxy) origin(r *http.Request) string {
	if p.policy.PublicURL != "" {
		return strings.TrimRight(p.policy.PublicURL, "/")
	}
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// FileURL is the public download URL for key. The key is escaped as a
// single path segment, so "/" becomes %2F.
func (p *Proxy) FileURL(r *http.Request, key string) string {
	return p.origin(r) + PathFile + url.PathEscape(key)
}
