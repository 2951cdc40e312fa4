package browser

import (
	"context"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// webdriverScript removes the standard automation marker before any page
// script runs. Amazon's front end checks navigator.webdriver on load, so
// this has to be registered on the browser context, not evaluated after
// navigation.
const webdriverScript = `
(function() {
    'use strict';

    Object.defineProperty(navigator, 'webdriver', {
        get: () => undefined,
        configurable: true
    });
    delete Object.getPrototypeOf(navigator).webdriver;

    Object.defineProperty(navigator, 'languages', {
        get: () => Object.freeze(['en-US', 'en']),
        configurable: true
    });

    if (!window.chrome) {
        Object.defineProperty(window, 'chrome', {
            value: { runtime: {} },
            writable: true,
            enumerable: true,
            configurable: false
        });
    }
})();
`

// stealthAllocatorOptions returns the fixed Chrome flag set: automation
// markers off, sandboxing off for container deployments, fixed desktop
// viewport and user agent.
func stealthAllocatorOptions(cfg Config) []chromedp.ExecAllocatorOption {
	return []chromedp.ExecAllocatorOption{
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),

		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("excludeSwitches", "enable-automation"),
		chromedp.Flag("useAutomationExtension", false),
		chromedp.Flag("disable-infobars", true),

		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
		chromedp.Flag("lang", "en-US,en"),

		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(cfg.UserAgent),
	}
}

// removeWebdriverProperty registers the stealth script to run on every new
// document before the page's own scripts.
func removeWebdriverProperty() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(webdriverScript).Do(ctx)
		return err
	})
}
