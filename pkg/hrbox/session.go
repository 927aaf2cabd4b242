// Package hrbox talks to the HR document box web API: it bootstraps a
// cookie session, logs in, walks the paged document listing and
// downloads document contents.
package hrbox

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"
	"github.com/hrbox-pull/hrbox-pull/common/utils/netutil"
	"golang.org/x/net/proxy"
	"golang.org/x/net/publicsuffix"
)

const (
	ServiceDomain = "hr-document-box.com"

	XSRFCookie = "XSRF-TOKEN"
	XSRFHeader = "X-XSRF-TOKEN"

	LoginPath     = "/external/login"
	DocumentsPath = "/api/v1/internal/documents"
)

// BaseURL returns the service URL of a tenant.
func BaseURL(subdomain string) string {
	return fmt.Sprintf("https://%s.%s", subdomain, ServiceDomain)
}

type Options struct {
	// Timeout applies to every single request. Zero means no timeout.
	Timeout time.Duration
	// Proxy is an http, https or socks5 proxy URL.
	Proxy     string
	UserAgent string
}

// Session is an authenticated conversation with one HR document box.
// It is safe for concurrent use once Login has returned.
type Session struct {
	client  *resty.Client
	jar     http.CookieJar
	baseURL string
	token   string
	logger  *log.Logger
}

// NewSession creates the cookie store, fetches the anti-CSRF token from
// baseURL and returns a session that sends it with every request.
func NewSession(ctx context.Context, baseURL string, opts Options) (*Session, error) {
	baseURL = strings.TrimSuffix(baseURL, "/")
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host are required", baseURL)
	}
	logger := log.FromContext(ctx).WithPrefix("hrbox")
	logger.Info("Using base URL", "url", baseURL)

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	var dialer proxy.ContextDialer
	if netutil.IsSocksProxy(opts.Proxy) {
		dialer, err = netutil.NewProxyDialer(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy %q: %w", opts.Proxy, err)
		}
	}

	boot := newClient(jar, opts, dialer, logger).
		SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}))
	token, err := Bootstrap(ctx, boot, baseURL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	logger.Debug("Got XSRF token")

	return &Session{
		client:  newClient(jar, opts, dialer, logger).SetHeader(XSRFHeader, token),
		jar:     jar,
		baseURL: baseURL,
		token:   token,
		logger:  logger,
	}, nil
}

func newClient(jar http.CookieJar, opts Options, dialer proxy.ContextDialer, logger *log.Logger) *resty.Client {
	client := resty.New().
		SetCookieJar(jar).
		SetLogger(logger)
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	switch {
	case dialer != nil:
		client.SetTransport(&http.Transport{DialContext: dialer.DialContext})
	case opts.Proxy != "":
		client.SetProxy(opts.Proxy)
	}
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}
	return client
}

// Bootstrap issues one unauthenticated GET to baseURL and returns the value
// of the XSRF-TOKEN cookie it sets. client must not follow redirects, the
// cookie is set on the first response. Cookies end up in client's jar.
func Bootstrap(ctx context.Context, client *resty.Client, baseURL string) (string, error) {
	target := strings.TrimSuffix(baseURL, "/") + "/"
	resp, err := client.R().SetContext(ctx).Get(target)
	if err != nil {
		return "", &HTTPError{Method: http.MethodGet, URL: target, Err: err}
	}
	// a redirect is the expected answer for an anonymous visitor
	if resp.IsError() {
		return "", &HTTPError{
			Method:     http.MethodGet,
			URL:        target,
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
		}
	}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == XSRFCookie {
			return cookie.Value, nil
		}
	}
	return "", &ProtocolError{Op: "bootstrap", Err: ErrMissingToken}
}

func (s *Session) BaseURL() string {
	return s.baseURL
}

func (s *Session) Token() string {
	return s.token
}

// Cookies returns the cookies the session would send to its base URL.
func (s *Session) Cookies() []*http.Cookie {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return nil
	}
	return s.jar.Cookies(u)
}

func (s *Session) url(path string) string {
	return s.baseURL + path
}

func (s *Session) Get(ctx context.Context, path string, query url.Values) (*resty.Response, error) {
	target := s.url(path)
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParamsFromValues(query).
		Get(target)
	return resp, checkResponse(http.MethodGet, target, resp, err)
}

func (s *Session) PostForm(ctx context.Context, path string, fields map[string]string) (*resty.Response, error) {
	target := s.url(path)
	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(fields).
		Post(target)
	return resp, checkResponse(http.MethodPost, target, resp, err)
}

// Stream performs a GET and hands out the raw body, which the caller must
// close. The body is only returned for a successful status.
func (s *Session) Stream(ctx context.Context, path string) (io.ReadCloser, int64, error) {
	target := s.url(path)
	resp, err := s.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(target)
	if err := checkResponse(http.MethodGet, target, resp, err); err != nil {
		if resp != nil && resp.RawBody() != nil {
			io.Copy(io.Discard, resp.RawBody())
			resp.RawBody().Close()
		}
		return nil, 0, err
	}
	return resp.RawBody(), resp.RawResponse.ContentLength, nil
}

func checkResponse(method, target string, resp *resty.Response, err error) error {
	if err != nil {
		return &HTTPError{Method: method, URL: target, Err: err}
	}
	if !resp.IsSuccess() {
		return &HTTPError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
		}
	}
	return nil
}
