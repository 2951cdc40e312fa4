// Package commands implements the CLI commands for shopctl.
package commands

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shopctl/shopctl/internal/amazon"
	"github.com/shopctl/shopctl/internal/browser"
	"github.com/shopctl/shopctl/internal/config"
	"github.com/shopctl/shopctl/internal/logger"
	"github.com/shopctl/shopctl/internal/output"
	"github.com/shopctl/shopctl/internal/profile"
	"github.com/shopctl/shopctl/internal/session"
)

var rootCmd = &cobra.Command{
	Use:   "shopctl",
	Short: "Drive a retail storefront from the command line",
	Long: `Shopctl drives a real storefront through a headless browser and turns
the pages into structured records.

Credentials are cookie profiles saved under ~/.shopctl/profiles. Export
cookies from a logged-in browser session, save them as a profile, then
run operations against that identity.

Examples:
  # Save exported cookies as a profile, then inspect your cart
  shopctl save-profile personal --file cookies.json
  shopctl cart

  # Search needs no sign-in
  shopctl search "usb c cable"

  # Serve everything as JSON-RPC for an automation agent
  shopctl serve --listen 127.0.0.1:8675`,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.shopctl.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress progress output")
	rootCmd.PersistentFlags().StringP("format", "f", "json", "output format: json, yaml")
	rootCmd.PersistentFlags().String("profile", "", "profile to use for this invocation")
	rootCmd.PersistentFlags().Bool("headful", false, "run the browser with a visible window")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

func initConfig() {
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".shopctl")
		viper.SetConfigType("yaml")
	}

	// Environment variables
	viper.SetEnvPrefix("SHOPCTL")
	viper.AutomaticEnv()

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// initRuntime sets up logging from the global flags. Every RunE calls
// this first.
func initRuntime() {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})
}

// newSession builds the credential store and session controller from the
// resolved config. A --profile flag switches before anything runs.
func newSession(cmd *cobra.Command, cfg config.Config) (*session.Session, error) {
	store := profile.NewStore(profile.Config{
		Dir:           cfg.ProfilesDir,
		LegacyPath:    cfg.LegacyCookiePath,
		BrandToken:    cfg.BrandToken,
		DefaultDomain: cfg.DefaultDomain,
	})
	sess := session.New(store)

	if name, _ := cmd.Flags().GetString("profile"); name != "" {
		if err := sess.Switch(name); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

// newShop wires the browser launcher and operation client. The caller
// closes the launcher when the operation finishes.
func newShop(cmd *cobra.Command, cfg config.Config, sess *session.Session) (*amazon.Client, *browser.Launcher) {
	headful, _ := cmd.Flags().GetBool("headful")
	launcher := browser.NewLauncher(browser.Config{
		UserAgent: cfg.UserAgent,
		Headless:  cfg.Headless && !headful,
		Timeout:   cfg.NavTimeout,
	})
	client := amazon.NewClient(sess, launcher, amazon.Config{
		SnapshotsDir:  cfg.SnapshotsDir,
		Capture:       cfg.Capture,
		MockOps:       cfg.MockOps,
		NavTimeout:    cfg.NavTimeout,
		MarkerTimeout: cfg.MarkerTimeout,
	})
	return client, launcher
}

// writeResult renders data to stdout in the requested format.
func writeResult(cmd *cobra.Command, data any) error {
	formatStr, _ := cmd.Flags().GetString("format")
	format, err := output.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	w, err := output.NewWriter(os.Stdout, format)
	if err != nil {
		return err
	}
	return w.Write(data)
}
