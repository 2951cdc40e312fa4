// Package browser provisions stealth chromedp sessions seeded with a
// profile's cookies. A session is opened for exactly one operation and must
// be released by the caller; Close is safe on every exit path.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/shopctl/shopctl/internal/logger"
	"github.com/shopctl/shopctl/internal/profile"
)

// Config holds launcher configuration.
type Config struct {
	UserAgent string
	Headless  bool
	Timeout   time.Duration // default per-operation deadline
}

// Fixed desktop Chrome user agent. Headless Chrome's own UA advertises
// HeadlessChrome, which trips bot detection immediately.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		UserAgent: defaultUserAgent,
		Headless:  true,
		Timeout:   30 * time.Second,
	}
}

// Launcher creates browser sessions. It owns the exec allocator; each Open
// call gets its own chromedp context on top of it.
type Launcher struct {
	config      Config
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
}

// NewLauncher builds the allocator with the anti-detection flag set.
func NewLauncher(cfg Config) *Launcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:], stealthAllocatorOptions(cfg)...)
	if chromePath := FindChromePath(); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)

	logger.Debug("browser launcher created", "headless", cfg.Headless, "timeout", cfg.Timeout)

	return &Launcher{
		config:      cfg,
		allocCtx:    allocCtx,
		cancelAlloc: cancelAlloc,
	}
}

// Close tears down the allocator and any remaining browser process.
func (l *Launcher) Close() error {
	if l.cancelAlloc != nil {
		l.cancelAlloc()
	}
	return nil
}

// PageSession is one live browser page. The caller must Close it; Close
// always shuts the underlying browser context down, even after a failed
// operation.
type PageSession struct {
	Ctx    context.Context
	cancel context.CancelFunc
}

// Close releases the browser context. Safe to call more than once.
func (s *PageSession) Close() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Open starts a browser session, applies the automation-detection patches
// before any page script can run, and injects the profile's cookies before
// any navigation. An empty cookie set is a warning, not an error: public
// read-only operations still work unauthenticated.
func (l *Launcher) Open(ctx context.Context, cookies []profile.Cookie, domain string) (*PageSession, error) {
	browserCtx, cancelBrowser := chromedp.NewContext(l.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			logger.Debug("chromedp", "msg", fmt.Sprintf(format, args...))
		}),
	)

	sess := &PageSession{Ctx: browserCtx, cancel: cancelBrowser}

	if len(cookies) == 0 {
		logger.Warn("opening browser session with no cookies; authenticated pages will redirect to login")
	}

	actions := []chromedp.Action{removeWebdriverProperty()}
	if len(cookies) > 0 {
		actions = append(actions, setCookies(cookies, domain))
	}

	startupCtx, cancelStartup := context.WithTimeout(browserCtx, l.config.Timeout)
	defer cancelStartup()

	if err := chromedp.Run(startupCtx, actions...); err != nil {
		sess.Close()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	logger.Debug("browser session opened", "cookies", len(cookies), "domain", domain)
	return sess, nil
}

// setCookies maps profile cookies onto CDP cookie params. Values are never
// logged.
func setCookies(cookies []profile.Cookie, fallbackDomain string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		params := make([]*network.CookieParam, 0, len(cookies))
		for _, c := range cookies {
			domain := c.Domain
			if domain == "" {
				domain = fallbackDomain
			}
			path := c.Path
			if path == "" {
				path = "/"
			}
			p := &network.CookieParam{
				Name:     c.Name,
				Value:    c.Value,
				Domain:   domain,
				Path:     path,
				Secure:   c.Secure,
				HTTPOnly: c.HTTPOnly,
			}
			if !c.Session && c.ExpirationDate > 0 {
				expires := cdpTimeSinceEpoch(c.ExpirationDate)
				p.Expires = &expires
			}
			switch c.SameSite {
			case profile.SameSiteStrict:
				p.SameSite = network.CookieSameSiteStrict
			case profile.SameSiteLax:
				p.SameSite = network.CookieSameSiteLax
			case profile.SameSiteNone:
				p.SameSite = network.CookieSameSiteNone
			}
			params = append(params, p)
		}
		return network.SetCookies(params).Do(ctx)
	})
}

func cdpTimeSinceEpoch(unixSeconds float64) cdp.TimeSinceEpoch {
	sec := int64(unixSeconds)
	nsec := int64((unixSeconds - float64(sec)) * 1e9)
	return cdp.TimeSinceEpoch(time.Unix(sec, nsec))
}
