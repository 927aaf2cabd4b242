package netutil

import (
	"errors"
	"net/url"
	"strings"

	"golang.org/x/net/proxy"
)

var ErrNoContextDialer = errors.New("proxy dialer does not support contexts")

// IsSocksProxy reports whether proxyURL needs a SOCKS dialer rather than
// an HTTP CONNECT proxy.
func IsSocksProxy(proxyURL string) bool {
	return strings.HasPrefix(proxyURL, "socks5://") || strings.HasPrefix(proxyURL, "socks5h://")
}

func NewProxyDialer(proxyURL string) (proxy.ContextDialer, error) {
	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, err
	}
	d, err := proxy.FromURL(u, proxy.Direct)
	if err != nil {
		return nil, err
	}
	cd, ok := d.(proxy.ContextDialer)
	if !ok {
		return nil, ErrNoContextDialer
	}
	return cd, nil
}
