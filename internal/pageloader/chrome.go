package pageloader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// snapshotGrace bounds the DOM read that follows a navigation timeout.
const snapshotGrace = 5 * time.Second

type ChromeOptions struct {
	UserAgent string
	// ExecPath overrides chromedp's browser lookup.
	ExecPath string
}

// ChromeLoader renders pages in a headless browser, one browser per session.
type ChromeLoader struct {
	opts ChromeOptions
}

func NewChromeLoader(opts ChromeOptions) *ChromeLoader {
	return &ChromeLoader{opts: opts}
}

func (l *ChromeLoader) Open(ctx context.Context) (Session, error) {
	allocatorOptions := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(pickUserAgent(l.opts.UserAgent)),
		chromedp.WindowSize(1366, 900),
	)
	if l.opts.ExecPath != "" {
		allocatorOptions = append(allocatorOptions, chromedp.ExecPath(l.opts.ExecPath))
	}

	// the browser outlives the caller's request context until Close
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocatorOptions...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	return &chromeSession{
		tabCtx: tabCtx,
		cancel: func() {
			cancelTab()
			cancelAlloc()
		},
	}, nil
}

type chromeSession struct {
	tabCtx context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

func (s *chromeSession) Load(ctx context.Context, url string, timeout time.Duration) (*Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}

	navCtx, cancelNav := context.WithTimeout(s.tabCtx, effectiveTimeout(timeout))
	defer cancelNav()
	stop := context.AfterFunc(ctx, cancelNav)
	defer stop()

	navErr := chromedp.Run(navCtx, chromedp.Navigate(url))
	timedOutNav := navErr != nil && ctx.Err() == nil && errors.Is(navCtx.Err(), context.DeadlineExceeded)
	if navErr != nil && !timedOutNav {
		return nil, fmt.Errorf("navigate %s: %w", url, navErr)
	}

	snapCtx, cancelSnap := context.WithTimeout(s.tabCtx, snapshotGrace)
	defer cancelSnap()

	var markup string
	if err := chromedp.Run(snapCtx, chromedp.OuterHTML("html", &markup, chromedp.ByQuery)); err != nil {
		if timedOutNav {
			return emptyPage(url), ErrLoadTimeout
		}
		return nil, fmt.Errorf("snapshot %s: %w", url, err)
	}

	page := &Page{URL: url, Document: parseMarkup(markup)}
	if timedOutNav {
		return page, ErrLoadTimeout
	}
	return page, nil
}

func (s *chromeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.cancel()
	return nil
}
