package pageloader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

const maxPageBytes = 8 << 20

type HTTPOptions struct {
	UserAgent        string
	CloudflareBypass bool
	// Transport overrides the default transport, mainly for tests.
	Transport http.RoundTripper
}

type HTTPLoader struct {
	client *http.Client
}

func NewHTTPLoader(opts HTTPOptions) *HTTPLoader {
	var base http.RoundTripper
	if opts.Transport != nil {
		base = opts.Transport
	} else {
		base = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 4,
			ForceAttemptHTTP2:   true,
		}
	}
	if opts.CloudflareBypass {
		base = cloudflarebp.AddCloudFlareByPass(base)
	}

	return &HTTPLoader{
		client: &http.Client{
			Transport: userAgentTransport{base: base, ua: pickUserAgent(opts.UserAgent)},
		},
	}
}

func (l *HTTPLoader) Open(context.Context) (Session, error) {
	return &httpSession{client: l.client}, nil
}

type userAgentTransport struct {
	base http.RoundTripper
	ua   string
}

func (rt userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", rt.ua)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	}
	return rt.base.RoundTrip(req)
}

type httpSession struct {
	client *http.Client
	closed atomic.Bool
}

func (s *httpSession) Load(ctx context.Context, url string, timeout time.Duration) (*Page, error) {
	if s.closed.Load() {
		return nil, ErrSessionClosed
	}

	loadCtx, cancel := context.WithTimeout(ctx, effectiveTimeout(timeout))
	defer cancel()

	req, err := http.NewRequestWithContext(loadCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if timedOut(ctx, loadCtx, err) {
			return emptyPage(url), ErrLoadTimeout
		}
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if readErr != nil && !timedOut(ctx, loadCtx, readErr) {
		return nil, fmt.Errorf("read %s: %w", url, readErr)
	}

	// non-2xx pages are parsed like any other
	page := &Page{
		URL:        url,
		StatusCode: resp.StatusCode,
		Document:   decodeDocument(raw, resp.Header.Get("Content-Type")),
	}
	if readErr != nil {
		return page, ErrLoadTimeout
	}
	return page, nil
}

func (s *httpSession) Close() error {
	s.closed.Store(true)
	return nil
}

func decodeDocument(raw []byte, contentType string) *goquery.Document {
	reader, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return parseMarkup(string(raw))
	}

	decoded, err := io.ReadAll(reader)
	if err != nil {
		return parseMarkup(string(raw))
	}
	return parseMarkup(string(decoded))
}

// timedOut reports whether the load's own timeout fired. A caller that
// cancelled or ran out of time is a plain failure.
func timedOut(parent, loadCtx context.Context, err error) bool {
	if parent.Err() != nil {
		return false
	}
	return errors.Is(loadCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded)
}
