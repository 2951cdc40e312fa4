package commands

import (
	"context"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shopctl/shopctl/internal/amazon"
	"github.com/shopctl/shopctl/internal/config"
	"github.com/shopctl/shopctl/internal/logger"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>...",
	Short: "Search the catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

var productCmd = &cobra.Command{
	Use:   "product <asin>",
	Short: "Show a product detail page as a structured record",
	Args:  cobra.ExactArgs(1),
	RunE:  runProduct,
}

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show the active profile's cart",
	RunE:  runCart,
}

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Show the active profile's order history",
	RunE:  runOrders,
}

var addCmd = &cobra.Command{
	Use:   "add <asin>",
	Short: "Add a product to the cart",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every item from the cart",
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(productCmd)
	rootCmd.AddCommand(cartCmd)
	rootCmd.AddCommand(ordersCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(clearCmd)
}

// setup builds the session and operation client for a one-shot command.
// confirm marks identity-scoped operations: a human typing the command
// is the confirmation, so the gate is satisfied up front.
func setup(cmd *cobra.Command, confirm bool) (context.Context, context.CancelFunc, *amazon.Client, func() error, error) {
	initRuntime()
	cfg := config.Load()

	sess, err := newSession(cmd, cfg)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if confirm {
		if err := sess.Confirm(""); err != nil {
			logger.Error("cannot confirm active profile", "profile", sess.Active(), "error", err)
			return nil, nil, nil, nil, err
		}
	}
	shop, launcher := newShop(cmd, cfg, sess)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	return ctx, cancel, shop, launcher.Close, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, cancel, shop, closeBrowser, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer cancel()
	defer closeBrowser()

	results, err := shop.Search(ctx, strings.Join(args, " "))
	if err != nil {
		logger.Error("search failed", "error", err)
		return err
	}
	return writeResult(cmd, results)
}

func runProduct(cmd *cobra.Command, args []string) error {
	ctx, cancel, shop, closeBrowser, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer cancel()
	defer closeBrowser()

	product, err := shop.Product(ctx, args[0])
	if err != nil {
		logger.Error("product lookup failed", "asin", args[0], "error", err)
		return err
	}
	return writeResult(cmd, product)
}

func runCart(cmd *cobra.Command, args []string) error {
	ctx, cancel, shop, closeBrowser, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer cancel()
	defer closeBrowser()

	cart, err := shop.Cart(ctx)
	if err != nil {
		logger.Error("cart fetch failed", "error", err)
		return err
	}
	return writeResult(cmd, cart)
}

func runOrders(cmd *cobra.Command, args []string) error {
	ctx, cancel, shop, closeBrowser, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer cancel()
	defer closeBrowser()

	orders, err := shop.Orders(ctx)
	if err != nil {
		logger.Error("orders fetch failed", "error", err)
		return err
	}
	return writeResult(cmd, orders)
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx, cancel, shop, closeBrowser, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer cancel()
	defer closeBrowser()

	res, err := shop.AddToCart(ctx, args[0])
	if err != nil {
		logger.Error("add to cart failed", "asin", args[0], "error", err)
		return err
	}
	return writeResult(cmd, res)
}

func runClear(cmd *cobra.Command, args []string) error {
	ctx, cancel, shop, closeBrowser, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer cancel()
	defer closeBrowser()

	res, err := shop.ClearCart(ctx)
	if err != nil {
		logger.Error("clear cart failed", "error", err)
		return err
	}
	return writeResult(cmd, res)
}
