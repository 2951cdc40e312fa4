package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/shopctl/shopctl/internal/config"
	"github.com/shopctl/shopctl/internal/logger"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List saved cookie profiles",
	RunE:  runProfiles,
}

var switchCmd = &cobra.Command{
	Use:   "switch <name>",
	Short: "Make a profile the active identity",
	Args:  cobra.ExactArgs(1),
	RunE:  runSwitch,
}

var saveProfileCmd = &cobra.Command{
	Use:   "save-profile <name>",
	Short: "Save exported browser cookies as a profile",
	Long: `Save a cookie export as a named profile. The input must be a JSON
array of cookie objects, the format browser cookie-export extensions
produce. Use --file - to read from stdin.

Example:
  shopctl save-profile work --file work-cookies.json`,
	Args: cobra.ExactArgs(1),
	RunE: runSaveProfile,
}

func init() {
	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(switchCmd)
	rootCmd.AddCommand(saveProfileCmd)

	saveProfileCmd.Flags().String("file", "", "cookie export file, or - for stdin (required)")
	_ = saveProfileCmd.MarkFlagRequired("file")
}

func runProfiles(cmd *cobra.Command, args []string) error {
	initRuntime()
	cfg := config.Load()

	sess, err := newSession(cmd, cfg)
	if err != nil {
		return err
	}

	return writeResult(cmd, struct {
		Active   string `json:"active" yaml:"active"`
		Profiles any    `json:"profiles" yaml:"profiles"`
	}{sess.Active(), sess.Store().List()})
}

func runSwitch(cmd *cobra.Command, args []string) error {
	initRuntime()
	cfg := config.Load()

	sess, err := newSession(cmd, cfg)
	if err != nil {
		return err
	}
	if err := sess.Switch(args[0]); err != nil {
		logger.Error("switch failed", "profile", args[0], "error", err)
		return err
	}

	return writeResult(cmd, struct {
		Active string `json:"active" yaml:"active"`
	}{sess.Active()})
}

func runSaveProfile(cmd *cobra.Command, args []string) error {
	initRuntime()
	cfg := config.Load()

	path, _ := cmd.Flags().GetString("file")
	var payload []byte
	var err error
	if path == "-" {
		payload, err = io.ReadAll(os.Stdin)
	} else {
		payload, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("reading cookie export: %w", err)
	}

	sess, err := newSession(cmd, cfg)
	if err != nil {
		return err
	}

	n, err := sess.Store().Save(args[0], payload)
	if err != nil {
		logger.Error("save failed", "profile", args[0], "error", err)
		return err
	}
	logger.Info("profile saved", "profile", args[0], "cookies", n)

	return writeResult(cmd, struct {
		Name    string `json:"name" yaml:"name"`
		Cookies int    `json:"cookies" yaml:"cookies"`
	}{args[0], n})
}
