package webdav

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/hrbox-pull/hrbox-pull/pkg/enums/ctxkey"
)

type Client struct {
	BaseURL    string
	Username   string
	Password   string
	httpClient *http.Client
}

type WebdavMethod string

const (
	WebdavMethodMkcol    WebdavMethod = "MKCOL"
	WebdavMethodPropfind WebdavMethod = "PROPFIND"
	WebdavMethodPut      WebdavMethod = "PUT"
	WebdavMethodMove     WebdavMethod = "MOVE"
	WebdavMethodDelete   WebdavMethod = "DELETE"
)

func NewClient(baseURL, username, password string, httpClient *http.Client) *Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		BaseURL:    baseURL,
		Username:   username,
		Password:   password,
		httpClient: httpClient,
	}
}

func (c *Client) doRequest(ctx context.Context, method WebdavMethod, url string, body io.Reader) (*http.Response, error) {
	return c.doRequestWithHeader(ctx, method, url, body, nil)
}

func (c *Client) doRequestWithHeader(ctx context.Context, method WebdavMethod, url string, body io.Reader, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, string(method), url, body)
	if err != nil {
		return nil, err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	if c.Username != "" && c.Password != "" {
		req.SetBasicAuth(c.Username, c.Password)
	}
	if method == WebdavMethodPropfind {
		req.Header.Set("Depth", "1")
	}
	if method == WebdavMethodPut && ctx != nil {
		if length := ctx.Value(ctxkey.ContentLength); length != nil {
			if l, ok := length.(int64); ok {
				req.ContentLength = l
			}
		}
	}
	return c.httpClient.Do(req)
}

func (c *Client) Exists(ctx context.Context, remotePath string) (bool, error) {
	target, err := c.resolve(remotePath)
	if err != nil {
		return false, err
	}
	resp, err := c.doRequest(ctx, WebdavMethodPropfind, target, nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return true, nil
	}
	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	return false, fmt.Errorf("PROPFIND: %s", resp.Status)
}

func (c *Client) MkDir(ctx context.Context, dirPath string) error {
	dirPath = strings.Trim(dirPath, "/")
	if dirPath == "" || dirPath == "." {
		return nil
	}
	parts := strings.Split(dirPath, "/")
	currentPath := ""
	for i, part := range parts {
		if i > 0 {
			currentPath += "/"
		}
		currentPath += part

		exists, err := c.Exists(ctx, currentPath)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		target, err := c.resolve(currentPath)
		if err != nil {
			return err
		}
		resp, err := c.doRequest(ctx, WebdavMethodMkcol, target, nil)
		if err != nil {
			return err
		}
		resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("MKCOL %s: %s", currentPath, resp.Status)
		}
	}
	return nil
}

func (c *Client) WriteFile(ctx context.Context, remotePath string, content io.Reader) error {
	target, err := c.resolve(remotePath)
	if err != nil {
		return err
	}
	resp, err := c.doRequest(ctx, WebdavMethodPut, target, content)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("PUT: %s", resp.Status)
}

// Move renames src to dst on the server, replacing dst if it exists.
func (c *Client) Move(ctx context.Context, src, dst string) error {
	from, err := c.resolve(src)
	if err != nil {
		return err
	}
	to, err := c.resolve(dst)
	if err != nil {
		return err
	}
	header := http.Header{}
	header.Set("Destination", to)
	header.Set("Overwrite", "T")
	resp, err := c.doRequestWithHeader(ctx, WebdavMethodMove, from, nil, header)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("MOVE: %s", resp.Status)
}

func (c *Client) Delete(ctx context.Context, remotePath string) error {
	target, err := c.resolve(remotePath)
	if err != nil {
		return err
	}
	resp, err := c.doRequest(ctx, WebdavMethodDelete, target, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 || resp.StatusCode == http.StatusNotFound {
		return nil
	}
	return fmt.Errorf("DELETE: %s", resp.Status)
}

func (c *Client) resolve(remotePath string) (string, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", err
	}
	u.Path = path.Join(u.Path, strings.Trim(remotePath, "/"))
	return u.String(), nil
}
