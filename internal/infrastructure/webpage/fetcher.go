// Package webpage fetches public pages and reduces them to their visible text.
package webpage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html"

	"github.com/creditx/creditx-server/internal/domain/welfare"
)

const userAgent = "Mozilla/5.0 (compatible; CreditX-Eligibility/1.0)"

// ErrHostNotAllowed is returned for pages outside the configured host allowlist.
var ErrHostNotAllowed = errors.New("host not allowed")

// Fetcher downloads pages with resty and strips them to text.
type Fetcher struct {
	client       *resty.Client
	maxBytes     int64
	allowedHosts []string
}

// NewFetcher creates a fetcher. An empty allowlist admits every host; entries match
// the host itself and its subdomains.
func NewFetcher(timeout time.Duration, maxBytes int64, allowedHosts []string) *Fetcher {
	f := &Fetcher{maxBytes: maxBytes}
	for _, h := range allowedHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			f.allowedHosts = append(f.allowedHosts, h)
		}
	}
	f.client = resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "text/html,text/plain;q=0.9,*/*;q=0.5").
		SetRedirectPolicy(
			resty.FlexibleRedirectPolicy(5),
			resty.RedirectPolicyFunc(func(req *http.Request, _ []*http.Request) error {
				if !f.allowed(req.URL.Hostname()) {
					return fmt.Errorf("redirect to %s: %w", req.URL.Hostname(), ErrHostNotAllowed)
				}
				return nil
			}),
		)
	return f
}

// Fetch returns the visible text of pageURL. HTML is reduced to its text nodes;
// other content types are returned as read.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse page url: %w", err)
	}
	if !f.allowed(u.Hostname()) {
		return "", fmt.Errorf("%s: %w", u.Hostname(), ErrHostNotAllowed)
	}

	resp, err := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(pageURL)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		return "", fmt.Errorf("fetch page: HTTP %d", resp.StatusCode())
	}

	var reader io.Reader = body
	if f.maxBytes > 0 {
		reader = io.LimitReader(body, f.maxBytes)
	}
	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read page: %w", err)
	}

	if strings.Contains(strings.ToLower(resp.Header().Get("Content-Type")), "html") || looksLikeHTML(raw) {
		if text := VisibleText(raw); text != "" {
			return text, nil
		}
	}
	return strings.Join(strings.Fields(string(raw)), " "), nil
}

func (f *Fetcher) allowed(host string) bool {
	if len(f.allowedHosts) == 0 {
		return true
	}
	host = strings.ToLower(host)
	for _, h := range f.allowedHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

func looksLikeHTML(raw []byte) bool {
	head := strings.ToLower(strings.TrimSpace(string(raw[:min(len(raw), 512)])))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}

// VisibleText returns the whitespace-collapsed text nodes of an HTML document,
// skipping scripts, styles and noscript blocks.
func VisibleText(raw []byte) string {
	doc, err := html.Parse(strings.NewReader(string(raw)))
	if err != nil {
		return ""
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			}
		}
		if n.Type == html.TextNode {
			for _, word := range strings.Fields(n.Data) {
				if b.Len() > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(word)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return b.String()
}

var _ welfare.Fetcher = (*Fetcher)(nil)
