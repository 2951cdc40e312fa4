package config

import (
	"testing"

	"github.com/spf13/viper"

	"github.com/shopctl/shopctl/internal/amazon"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()

	cfg := Load()
	if cfg.ProfilesDir == "" || cfg.SnapshotsDir == "" {
		t.Fatalf("paths not defaulted: %+v", cfg)
	}
	if cfg.BrandToken != "amazon" {
		t.Errorf("BrandToken = %q", cfg.BrandToken)
	}
	if cfg.DefaultDomain != "www.amazon.com" {
		t.Errorf("DefaultDomain = %q", cfg.DefaultDomain)
	}
	if !cfg.Headless {
		t.Error("Headless should default to true")
	}
	if cfg.Listen != "127.0.0.1:8675" {
		t.Errorf("Listen = %q", cfg.Listen)
	}
	if len(cfg.MockOps) != 0 {
		t.Errorf("MockOps should default empty, got %v", cfg.MockOps)
	}
}

func TestLoadMockOps(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()

	viper.Set("mock.search", true)
	viper.Set("mock.clear-cart", true)

	cfg := Load()
	if !cfg.MockOps[amazon.OpSearch] {
		t.Error("mock.search not picked up")
	}
	if !cfg.MockOps[amazon.OpClearCart] {
		t.Error("mock.clear-cart not picked up")
	}
	if cfg.MockOps[amazon.OpCart] {
		t.Error("mock.cart should be off")
	}
}
