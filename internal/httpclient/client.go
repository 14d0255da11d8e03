package httpclient

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// New returns the outbound client shared by the uploader and the analyzers.
// Timeouts are left to the caller's context so a single REQUEST_TIMEOUT
// governs every hop. proxyURL may be empty.
func New(proxyURL string) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if p := strings.TrimSpace(proxyURL); p != "" {
		u, err := url.Parse(p)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url: %w", err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid proxy url %q: scheme and host required", p)
		}
		transport.Proxy = http.ProxyURL(u)
	}

	return &http.Client{Transport: transport}, nil
}
