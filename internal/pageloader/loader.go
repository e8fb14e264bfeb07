// Package pageloader fetches a chapter-listing page and hands back a parsed
// document snapshot. A load that runs out of time still returns whatever
// was received, together with ErrLoadTimeout.
package pageloader

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	KindHTTP   = "http"
	KindChrome = "chrome"

	DefaultTimeout   = 45 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var (
	ErrLoadTimeout   = errors.New("page load timed out")
	ErrSessionClosed = errors.New("page loader session closed")
)

type Page struct {
	URL        string
	StatusCode int
	Document   *goquery.Document
}

type Loader interface {
	Open(ctx context.Context) (Session, error)
}

// Session must be closed by the caller on every path.
type Session interface {
	Load(ctx context.Context, url string, timeout time.Duration) (*Page, error)
	Close() error
}

type Options struct {
	Kind             string
	UserAgent        string
	CloudflareBypass bool
}

func New(opts Options) (Loader, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Kind)) {
	case "", KindHTTP:
		return NewHTTPLoader(HTTPOptions{
			UserAgent:        opts.UserAgent,
			CloudflareBypass: opts.CloudflareBypass,
		}), nil
	case KindChrome:
		return NewChromeLoader(ChromeOptions{UserAgent: opts.UserAgent}), nil
	default:
		return nil, fmt.Errorf("unknown page loader %q, expected %s|%s", opts.Kind, KindHTTP, KindChrome)
	}
}

func emptyPage(url string) *Page {
	return &Page{URL: url, Document: parseMarkup("")}
}

func parseMarkup(markup string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		// the html5 parser only fails on reader errors
		return goquery.NewDocumentFromNode(&html.Node{Type: html.DocumentNode})
	}
	return doc
}

func pickUserAgent(override string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	return DefaultUserAgent
}

func effectiveTimeout(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return DefaultTimeout
	}
	return timeout
}
