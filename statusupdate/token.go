package statusupdate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

const (
	// CSRFHeader is the request header carrying the token.
	CSRFHeader = "X-CSRFToken"

	// CSRFCookie is the cookie holding the token.
	CSRFCookie = "csrftoken"

	// CSRFMetaName is the name of the page meta tag holding the token.
	CSRFMetaName = "csrf-token"
)

// ErrNoToken is returned by [PageToken] when the page has no token meta tag.
var ErrNoToken = errors.New("csrf token not found")

// TokenSource yields the CSRF token to send with a status change.
// An empty string means no token is available.
type TokenSource interface {
	Token() string
}

// StaticToken is a token read once, typically from the page meta tag.
type StaticToken string

// Token implements [TokenSource].
func (t StaticToken) Token() string { return string(t) }

// CookieToken reads the token from a cookie jar on every call.
type CookieToken struct {
	Jar  http.CookieJar
	URL  *url.URL
	Name string
}

// Token implements [TokenSource].
func (c CookieToken) Token() string {
	if c.Jar == nil || c.URL == nil {
		return ""
	}
	name := c.Name
	if name == "" {
		name = CSRFCookie
	}
	for _, ck := range c.Jar.Cookies(c.URL) {
		if ck.Name == name {
			if v, err := url.QueryUnescape(ck.Value); err == nil {
				return v
			}
			return ck.Value
		}
	}
	return ""
}

// FirstToken tries each source in order and returns the first non-empty token.
// The usual order is the page meta tag, then the cookie.
type FirstToken []TokenSource

// Token implements [TokenSource].
func (f FirstToken) Token() string {
	for _, ts := range f {
		if ts == nil {
			continue
		}
		if t := ts.Token(); t != "" {
			return t
		}
	}
	return ""
}

// ParseMetaToken scans an HTML document for <meta name="csrf-token">.
//
// Returns [ErrNoToken] if the tag is absent or empty.
func ParseMetaToken(r io.Reader) (string, error) {
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != nil && !errors.Is(err, io.EOF) {
				return "", fmt.Errorf("failed to parse page: %w", err)
			}
			return "", ErrNoToken

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data != "meta" {
				continue
			}
			var name, content string
			for _, a := range tok.Attr {
				switch strings.ToLower(a.Key) {
				case "name":
					name = a.Val
				case "content":
					content = a.Val
				}
			}
			if name == CSRFMetaName && content != "" {
				return content, nil
			}
		}
	}
}

// PageToken fetches pageURL with hc and returns the meta tag token.
//
// When hc has a cookie jar, the csrftoken cookie set by the page is stored
// there too, so a [CookieToken] over the same jar works as a fallback.
func PageToken(ctx context.Context, hc *http.Client, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status fetching page: %d", resp.StatusCode)
	}
	return ParseMetaToken(io.LimitReader(resp.Body, maxResponseBodySize))
}
