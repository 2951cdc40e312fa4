package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shopctl/shopctl/internal/config"
	"github.com/shopctl/shopctl/internal/logger"
	"github.com/shopctl/shopctl/internal/server"
	"github.com/shopctl/shopctl/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve every operation over JSON-RPC",
	Long: `Serve exposes the full operation surface as JSON-RPC 2.0 methods over
HTTP, for automation agents. Identity-scoped methods (cart, orders,
add/clear, buy) require an explicit profile.confirm first; the error
payload carries a prompt listing the available profiles.

Example:
  shopctl serve --listen 127.0.0.1:8675`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	initRuntime()
	cfg := config.Load()

	if addr, _ := cmd.Flags().GetString("listen"); addr != "" {
		cfg.Listen = addr
	}

	sess, err := newSession(cmd, cfg)
	if err != nil {
		logger.Error("failed to initialize session", "error", err)
		return err
	}

	shop, launcher := newShop(cmd, cfg, sess)
	defer launcher.Close()

	srv := server.New(server.Config{
		Session: sess,
		Shop:    shop,
		Version: version.String(),
	})
	defer srv.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := srv.ListenAndServe(ctx, cfg.Listen); err != nil {
		logger.Error("server failed", "error", err)
		return err
	}
	return nil
}
