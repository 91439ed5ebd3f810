// Package sessionclient wraps an HTTP client with the cookie-session
// refresh dance: when a request comes back 401, it calls the refresh
// route once and replays the original request with the new cookies.
package sessionclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
)

// Routes that must never trigger a refresh-and-retry. A 401 from the
// refresh route itself means the session is gone; retrying would loop.
var defaultExcludedSuffixes = []string{
	"/auth/refresh",
	"/auth/logout",
	"/auth/check",
}

type Options struct {
	// BaseURL prefixes relative request paths, e.g. "http://localhost:8080".
	BaseURL string

	// HTTPClient is the underlying client. A cookie jar is installed if
	// it has none. Defaults to a fresh client.
	HTTPClient *http.Client

	// OnSessionExpired fires once per terminal 401, after the session
	// cookies have been dropped. Typically routes the user to login.
	OnSessionExpired func()

	// ExcludedSuffixes overrides the default no-retry route list.
	ExcludedSuffixes []string
}

type Client struct {
	base     string
	http     *http.Client
	jar      http.CookieJar
	expired  func()
	excluded []string
}

func New(opts Options) (*Client, error) {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	if hc.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("sessionclient: cookie jar: %w", err)
		}
		hc.Jar = jar
	}

	excluded := opts.ExcludedSuffixes
	if excluded == nil {
		excluded = defaultExcludedSuffixes
	}

	expired := opts.OnSessionExpired
	if expired == nil {
		expired = func() {}
	}

	return &Client{
		base:     strings.TrimRight(opts.BaseURL, "/"),
		http:     hc,
		jar:      hc.Jar,
		expired:  expired,
		excluded: excluded,
	}, nil
}

// Do sends the request, refreshing the session and retrying once on 401.
// Requests with a body must set GetBody (http.NewRequest does this for
// common body types) or the retry is skipped.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || c.isExcluded(req.URL.Path) {
		return resp, nil
	}

	retry, ok := cloneForRetry(req)
	if !ok {
		return resp, nil
	}

	if refreshErr := c.refresh(req.Context()); refreshErr != nil {
		c.dropSession(req.URL)
		c.expired()
		return resp, nil
	}

	// The refresh response set new cookies in the jar; replay.
	drain(resp)
	return c.http.Do(retry)
}

// Get issues a GET against BaseURL+path through Do.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// Post issues a POST with a JSON body against BaseURL+path through Do.
func (c *Client) Post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.Do(req)
}

// Check probes the auth status endpoint without any retry logic.
func (c *Client) Check(ctx context.Context) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/auth/check", nil)
	if err != nil {
		return nil, err
	}
	return c.http.Do(req)
}

// Logout calls the logout route and always drops local session state.
func (c *Client) Logout(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/auth/logout", nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err == nil {
		drain(resp)
	}

	if u, uerr := url.Parse(c.base + "/"); uerr == nil {
		c.dropSession(u)
	}
	return err
}

func (c *Client) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/auth/refresh", nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sessionclient: refresh rejected: %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) isExcluded(path string) bool {
	for _, suffix := range c.excluded {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// dropSession expires the token cookies in the jar.
func (c *Client) dropSession(u *url.URL) {
	if c.jar == nil || u == nil {
		return
	}
	c.jar.SetCookies(u, []*http.Cookie{
		{Name: "accessToken", Value: "", MaxAge: -1, Path: "/"},
		{Name: "refreshToken", Value: "", MaxAge: -1, Path: "/"},
	})
}

func cloneForRetry(req *http.Request) (*http.Request, bool) {
	retry := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return retry, true
	}
	if req.GetBody == nil {
		return nil, false
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, false
	}
	retry.Body = body
	return retry, true
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	_ = resp.Body.Close()
}
