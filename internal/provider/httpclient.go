package provider

import (
	"fmt"
	"net"
	"net/http"
	"net/url"

	"golang.org/x/net/proxy"
)

// loopbackHosts never go through the proxy; a local ollama must stay reachable.
const loopbackHosts = "localhost,127.0.0.1,::1"

// NewHTTPClient returns the client shared by every backend adapter.
// proxyURL may be empty (direct), http(s)://host:port or socks5://host:port.
func NewHTTPClient(proxyURL string) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if proxyURL == "" {
		return &http.Client{Transport: transport}, nil
	}

	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url: %w", err)
	}

	switch u.Scheme {
	case "http", "https":
		transport.Proxy = func(req *http.Request) (*url.URL, error) {
			if isLoopback(req.URL.Hostname()) {
				return nil, nil
			}
			return u, nil
		}
	case "socks5", "socks5h":
		dialer, err := proxy.FromURL(u, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("proxy dialer: %w", err)
		}
		perHost := proxy.NewPerHost(dialer, proxy.Direct)
		perHost.AddFromString(loopbackHosts)
		transport.Proxy = nil
		transport.DialContext = perHost.DialContext
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProxy, u.Scheme)
	}

	return &http.Client{Transport: transport}, nil
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
