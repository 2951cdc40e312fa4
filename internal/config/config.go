// Package config resolves the typed runtime configuration from viper
// (config file, environment, flags).
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/shopctl/shopctl/internal/amazon"
)

// Config is the resolved runtime configuration.
type Config struct {
	ProfilesDir      string
	LegacyCookiePath string
	SnapshotsDir     string

	BrandToken    string
	DefaultDomain string

	Headless      bool
	UserAgent     string
	NavTimeout    time.Duration
	MarkerTimeout time.Duration

	Capture bool
	MockOps map[amazon.Operation]bool

	Listen string
}

// SetDefaults registers every config key with its default. Call once
// before reading the config file.
func SetDefaults() {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, ".shopctl")

	viper.SetDefault("profiles.dir", filepath.Join(base, "profiles"))
	viper.SetDefault("profiles.legacy_file", filepath.Join(base, "cookies.json"))
	viper.SetDefault("snapshots.dir", filepath.Join(base, "snapshots"))
	viper.SetDefault("snapshots.capture", false)

	viper.SetDefault("marketplace.brand_token", "amazon")
	viper.SetDefault("marketplace.default_domain", "www.amazon.com")

	viper.SetDefault("browser.headless", true)
	viper.SetDefault("browser.nav_timeout", 30*time.Second)
	viper.SetDefault("browser.marker_timeout", 10*time.Second)

	viper.SetDefault("serve.listen", "127.0.0.1:8675")
}

// Load materializes the typed config from viper's current state.
func Load() Config {
	cfg := Config{
		ProfilesDir:      viper.GetString("profiles.dir"),
		LegacyCookiePath: viper.GetString("profiles.legacy_file"),
		SnapshotsDir:     viper.GetString("snapshots.dir"),
		Capture:          viper.GetBool("snapshots.capture"),

		BrandToken:    viper.GetString("marketplace.brand_token"),
		DefaultDomain: viper.GetString("marketplace.default_domain"),

		Headless:      viper.GetBool("browser.headless"),
		UserAgent:     viper.GetString("browser.user_agent"),
		NavTimeout:    viper.GetDuration("browser.nav_timeout"),
		MarkerTimeout: viper.GetDuration("browser.marker_timeout"),

		Listen: viper.GetString("serve.listen"),

		MockOps: make(map[amazon.Operation]bool),
	}

	// mock.search: true etc. turns per-operation snapshot sourcing on.
	for _, op := range []amazon.Operation{
		amazon.OpSearch, amazon.OpProduct, amazon.OpCart,
		amazon.OpAddToCart, amazon.OpClearCart, amazon.OpOrders,
	} {
		if viper.GetBool("mock." + string(op)) {
			cfg.MockOps[op] = true
		}
	}

	return cfg
}
