// Package headless renders pages in headless Chrome so that script-built
// winner listings are present in the captured markup.
package headless

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/JakeFAU/awards-crawler/internal/award"
)

// Config controls the behavior of the headless fetcher. Zero values take the
// defaults below.
type Config struct {
	MaxParallel       int
	UserAgent         string
	ExecPath          string
	NavigationTimeout time.Duration
	SelectorTimeout   time.Duration
	SettleDelay       time.Duration
	ScrollStep        int
	ScrollInterval    time.Duration
	MaxScrollSteps    int
	Screenshot        bool
}

// Defaults.
const (
	DefaultNavigationTimeout = 60 * time.Second
	DefaultSelectorTimeout   = 10 * time.Second
	DefaultSettleDelay       = 5 * time.Second
	DefaultScrollStep        = 100
	DefaultScrollInterval    = 100 * time.Millisecond
	DefaultMaxScrollSteps    = 400

	viewportWidth  = 1920
	viewportHeight = 1080
)

// blockedResources are failed before they reach the network.
var blockedResources = []network.ResourceType{
	network.ResourceTypeImage,
	network.ResourceTypeFont,
	network.ResourceTypeMedia,
}

// Fetcher implements award.Fetcher. Each Fetch starts and tears down its own
// browser, so a crashed page never leaks into the next source.
type Fetcher struct {
	cfg         Config
	limiter     chan struct{}
	allocations []chromedp.ExecAllocatorOption
}

// NewChromedp creates a headless fetcher backed by chromedp.
func NewChromedp(cfg Config) (*Fetcher, error) {
	if cfg.MaxParallel < 0 {
		return nil, fmt.Errorf("max parallel must be >= 0")
	}
	cfg = withDefaults(cfg)
	var limiter chan struct{}
	if cfg.MaxParallel > 0 {
		limiter = make(chan struct{}, cfg.MaxParallel)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("enable-automation", false),
		chromedp.WindowSize(viewportWidth, viewportHeight),
	)
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	return &Fetcher{
		cfg:         cfg,
		limiter:     limiter,
		allocations: opts,
	}, nil
}

func withDefaults(cfg Config) Config {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = DefaultNavigationTimeout
	}
	if cfg.SelectorTimeout <= 0 {
		cfg.SelectorTimeout = DefaultSelectorTimeout
	}
	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = 0
	}
	if cfg.ScrollStep <= 0 {
		cfg.ScrollStep = DefaultScrollStep
	}
	if cfg.ScrollInterval <= 0 {
		cfg.ScrollInterval = DefaultScrollInterval
	}
	if cfg.MaxScrollSteps <= 0 {
		cfg.MaxScrollSteps = DefaultMaxScrollSteps
	}
	return cfg
}

// Fetch renders the source locator and returns the resulting DOM.
func (f *Fetcher) Fetch(ctx context.Context, source award.Source) (award.Page, error) {
	if err := f.acquire(ctx); err != nil {
		return award.Page{}, err
	}
	defer f.release()

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, f.allocations...)
	defer allocCancel()
	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()

	// The first Run starts the browser; it must not carry a phase timeout.
	if err := chromedp.Run(taskCtx); err != nil {
		return award.Page{}, fmt.Errorf("start browser: %w", err)
	}

	meta := newResponseMeta()
	idle := newIdleWatcher()
	chromedp.ListenTarget(taskCtx, func(ev any) {
		switch e := ev.(type) {
		case *network.EventResponseReceived:
			meta.capture(e)
		case *page.EventLifecycleEvent:
			idle.observe(e.Name)
		case *fetch.EventRequestPaused:
			go blockRequest(taskCtx, e)
		}
	})

	navCtx, navCancel := context.WithTimeout(taskCtx, f.cfg.NavigationTimeout)
	err := chromedp.Run(navCtx,
		f.setupAction(),
		chromedp.Navigate(source.Locator),
		idle.wait(),
	)
	navCancel()
	if err != nil {
		return award.Page{}, fmt.Errorf("chromedp navigate: %w", err)
	}
	if status := meta.status(); status >= 400 {
		return award.Page{}, fmt.Errorf("chromedp navigate: document status %d", status)
	}

	selCtx, selCancel := context.WithTimeout(taskCtx, f.cfg.SelectorTimeout)
	err = chromedp.Run(selCtx, chromedp.WaitReady("body", chromedp.ByQuery))
	selCancel()
	if err != nil {
		return award.Page{}, fmt.Errorf("chromedp wait for body: %w", err)
	}

	var (
		html       string
		finalURL   string
		screenshot []byte
	)
	captureCtx, captureCancel := context.WithTimeout(taskCtx, f.captureBudget())
	defer captureCancel()
	actions := []chromedp.Action{
		chromedp.Sleep(f.cfg.SettleDelay),
		f.scrollAction(),
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if f.cfg.Screenshot {
		actions = append(actions, chromedp.FullScreenshot(&screenshot, 100))
	}
	if err := chromedp.Run(captureCtx, actions...); err != nil {
		return award.Page{}, fmt.Errorf("chromedp run: %w", err)
	}

	if finalURL == "" {
		finalURL = meta.url(source.Locator)
	}
	return award.Page{
		Source:     source,
		URL:        finalURL,
		Markup:     []byte(html),
		Screenshot: screenshot,
		Strategy:   award.StrategyHeadless,
	}, nil
}

func (f *Fetcher) setupAction() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}
		if err := page.SetLifecycleEventsEnabled(true).Do(ctx); err != nil {
			return fmt.Errorf("enable lifecycle events: %w", err)
		}
		if err := fetch.Enable().WithPatterns(blockPatterns()).Do(ctx); err != nil {
			return fmt.Errorf("enable request interception: %w", err)
		}
		if err := chromedp.EmulateViewport(viewportWidth, viewportHeight).Do(ctx); err != nil {
			return fmt.Errorf("set viewport: %w", err)
		}
		if f.cfg.UserAgent != "" {
			if err := emulation.SetUserAgentOverride(f.cfg.UserAgent).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		return nil
	})
}

// scrollAction scrolls in fixed steps until the scrolled distance reaches the
// document height, giving lazy loaders a chance to run.
func (f *Fetcher) scrollAction() chromedp.Action {
	script := fmt.Sprintf("window.scrollBy(0, %d); document.body.scrollHeight", f.cfg.ScrollStep)
	return chromedp.ActionFunc(func(ctx context.Context) error {
		total := 0
		for i := 0; i < f.cfg.MaxScrollSteps; i++ {
			var height int
			if err := chromedp.Evaluate(script, &height).Do(ctx); err != nil {
				return fmt.Errorf("scroll: %w", err)
			}
			total += f.cfg.ScrollStep
			if total >= height {
				return nil
			}
			select {
			case <-time.After(f.cfg.ScrollInterval):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
}

// captureBudget bounds settle, scroll and capture together.
func (f *Fetcher) captureBudget() time.Duration {
	scroll := time.Duration(f.cfg.MaxScrollSteps) * f.cfg.ScrollInterval
	return f.cfg.SettleDelay + scroll + f.cfg.NavigationTimeout
}

func blockPatterns() []*fetch.RequestPattern {
	patterns := make([]*fetch.RequestPattern, 0, len(blockedResources))
	for _, rt := range blockedResources {
		patterns = append(patterns, &fetch.RequestPattern{
			URLPattern:   "*",
			ResourceType: rt,
			RequestStage: fetch.RequestStageRequest,
		})
	}
	return patterns
}

func blocked(rt network.ResourceType) bool {
	for _, b := range blockedResources {
		if rt == b {
			return true
		}
	}
	return false
}

// blockRequest answers a paused request. Only blocked types are intercepted,
// but anything else is let through rather than stalled.
func blockRequest(ctx context.Context, ev *fetch.EventRequestPaused) {
	c := chromedp.FromContext(ctx)
	if c == nil || c.Target == nil {
		return
	}
	execCtx := cdp.WithExecutor(ctx, c.Target)
	if blocked(ev.ResourceType) {
		_ = fetch.FailRequest(ev.RequestID, network.ErrorReasonBlockedByClient).Do(execCtx)
		return
	}
	_ = fetch.ContinueRequest(ev.RequestID).Do(execCtx)
}

func (f *Fetcher) acquire(ctx context.Context) error {
	if f.limiter == nil {
		return nil
	}
	select {
	case f.limiter <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("headless slot wait canceled: %w", ctx.Err())
	}
}

func (f *Fetcher) release() {
	if f.limiter == nil {
		return
	}
	select {
	case <-f.limiter:
	default:
	}
}

// idleWatcher signals the first networkIdle lifecycle event that follows a
// navigation start.
type idleWatcher struct {
	mu    sync.Mutex
	armed bool
	fired bool
	ch    chan struct{}
}

func newIdleWatcher() *idleWatcher {
	return &idleWatcher{ch: make(chan struct{})}
}

func (w *idleWatcher) observe(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch name {
	case "init":
		w.armed = true
	case "networkIdle":
		if w.armed && !w.fired {
			w.fired = true
			close(w.ch)
		}
	}
}

// wait blocks until idle or until ctx ends. Never observing idle is not an
// error; the page is captured as it stands.
func (w *idleWatcher) wait() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		select {
		case <-w.ch:
		case <-ctx.Done():
		}
		return nil
	})
}

type responseMeta struct {
	mu     sync.RWMutex
	code   int
	docURL string
}

func newResponseMeta() *responseMeta {
	return &responseMeta{}
}

func (m *responseMeta) capture(event *network.EventResponseReceived) {
	if event.Type != network.ResourceTypeDocument || event.Response == nil {
		return
	}
	m.mu.Lock()
	m.code = int(event.Response.Status)
	m.docURL = event.Response.URL
	m.mu.Unlock()
}

func (m *responseMeta) status() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.code
}

func (m *responseMeta) url(fallback string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.docURL != "" {
		return m.docURL
	}
	return fallback
}
