package httpkit

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/http/httpproxy"
)

// NewOutboundClient returns the HTTP client shared by every third-party API
// call. Both plain and TLS traffic go through proxyURL when it is set;
// loopback destinations are never proxied. A zero timeout keeps the
// transport defaults.
func NewOutboundClient(proxyURL string, timeout time.Duration) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if proxyURL != "" {
		if _, err := url.Parse(proxyURL); err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}

		proxyFunc := (&httpproxy.Config{
			HTTPProxy:  proxyURL,
			HTTPSProxy: proxyURL,
		}).ProxyFunc()

		transport.Proxy = func(req *http.Request) (*url.URL, error) {
			return proxyFunc(req.URL)
		}
	} else {
		transport.Proxy = nil
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}, nil
}
