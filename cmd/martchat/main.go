package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/cmd/martchat/chat"
	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/api"
	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/cart"
	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/config"
	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/handoff"
	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/logging"
	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/session"
	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/store"
)

var (
	// Global flags
	cfgPath    string
	verbose    bool
	serverURL  string
	userIDFlag string

	// Loaded configuration
	cfg *config.Config

	// Logger for non-interactive subcommands
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "martchat",
	Short: "martchat - terminal client for the Qook grocery chatbot",
	Long: `martchat talks to a Qook chatbot backend from the terminal.

Chat turns can carry product search results, recipes, the cart and order
lists; those open as side panes next to the conversation. Cart edits are
applied optimistically and synced to the server in the background.

Run without arguments to start the interactive chat interface.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if serverURL != "" {
			cfg.Server.BaseURL = serverURL
		}

		// The interactive mode has its own UI; zap is for subcommands.
		if cmd.CalledAs() == "martchat" {
			return nil
		}
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractiveChat()
	},
}

// cartCmd prints the server cart without entering the TUI
var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show the current server-side cart",
	RunE:  showCart,
}

// ordersCmd fetches one order's details
var ordersCmd = &cobra.Command{
	Use:   "orders [order-code]",
	Short: "Show the details of an order",
	Args:  cobra.ExactArgs(1),
	RunE:  showOrder,
}

// favoritesCmd lists the saved recipes
var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "List favorite recipes",
	RunE:  showFavorites,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultConfigPath(), "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "backend base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&userIDFlag, "user", "", "user id (overrides stored identity)")

	rootCmd.AddCommand(cartCmd)
	rootCmd.AddCommand(ordersCmd)
	rootCmd.AddCommand(favoritesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// =============================================================================
// INTERACTIVE CHAT
// =============================================================================

func runInteractiveChat() error {
	logDir := filepath.Join(filepath.Dir(cfg.Storage.DatabasePath), "logs")
	if err := logging.Initialize(logDir, logging.Settings{
		DebugMode:  cfg.Logging.DebugMode || verbose,
		Level:      cfg.Logging.Level,
		Categories: cfg.Logging.Categories,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "warning: file logging disabled: %v\n", err)
	}
	defer logging.CloseAll()

	st, err := store.NewLocalStore(cfg.Storage.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open local store: %w", err)
	}
	defer st.Close()

	override := userIDFlag
	if override == "" {
		override = cfg.Server.UserID
	}
	userID := session.Resolve(override, st)

	client, err := api.NewClient(api.Config{
		BaseURL:    cfg.Server.BaseURL,
		UserID:     userID,
		Timeout:    cfg.ServerTimeout(),
		CSRFCookie: cfg.Server.CSRFCookie,
	})
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	state := cart.NewState(cart.Rules{
		BaseShippingFee:       cfg.Cart.BaseShippingFee,
		FreeShippingThreshold: cfg.Cart.FreeShippingThreshold,
	})

	// Seed from the server; an unreachable backend still gets a usable UI.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ServerTimeout())
	if snapshot, err := client.GetCart(ctx); err != nil {
		logging.Get(logging.CategoryCart).Warn("initial cart fetch failed: %v", err)
	} else {
		state.Replace(snapshot)
	}

	// Push favorites saved while offline, then mirror the server's list.
	if favs, err := st.ListFavorites(); err == nil && len(favs) > 0 {
		if err := client.BulkSyncFavorites(ctx, favs); err != nil {
			logging.Get(logging.CategoryAPI).Warn("favorites bulk sync failed: %v", err)
		} else if serverFavs, err := client.GetFavorites(ctx); err == nil {
			if err := st.ReplaceFavorites(serverFavs); err != nil {
				logging.Get(logging.CategoryStore).Warn("failed to mirror favorites: %v", err)
			}
		}
	}
	cancel()

	syncer := cart.NewSyncer(state, client, cfg.CartSyncDelay())
	defer syncer.Stop()

	watcher, err := handoff.NewWatcher(cfg.Storage.HandoffDir, st)
	if err != nil {
		return fmt.Errorf("failed to create handoff watcher: %w", err)
	}
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if err := watcher.Start(watchCtx); err != nil {
		return fmt.Errorf("failed to start handoff watcher: %w", err)
	}
	defer watcher.Stop()

	model := chat.NewModel(chat.Options{
		Client:  client,
		Store:   st,
		Syncer:  syncer,
		State:   state,
		Handoff: watcher,
		Config:  *cfg,
		UserID:  userID,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat interface failed: %w", err)
	}
	return nil
}

// =============================================================================
// SUBCOMMANDS
// =============================================================================

func newSubcommandClient() (*api.Client, *store.LocalStore, error) {
	st, err := store.NewLocalStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open local store: %w", err)
	}

	override := userIDFlag
	if override == "" {
		override = cfg.Server.UserID
	}
	userID := session.Resolve(override, st)

	client, err := api.NewClient(api.Config{
		BaseURL:    cfg.Server.BaseURL,
		UserID:     userID,
		Timeout:    cfg.ServerTimeout(),
		CSRFCookie: cfg.Server.CSRFCookie,
	})
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	logger.Info("client ready",
		zap.String("server", cfg.Server.BaseURL),
		zap.String("user_id", userID))
	return client, st, nil
}

func showCart(cmd *cobra.Command, args []string) error {
	client, st, err := newSubcommandClient()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.ServerTimeout())
	defer cancel()

	snapshot, err := client.GetCart(ctx)
	if err != nil {
		logger.Error("cart fetch failed", zap.Error(err))
		return err
	}

	// A 2xx body without a cart field decodes to a nil snapshot.
	if snapshot == nil || len(snapshot.Items) == 0 {
		fmt.Println("장바구니가 비어 있어요.")
		return nil
	}
	for _, item := range snapshot.Items {
		fmt.Printf("%-20s x%-3d %8d원\n", item.Name, item.Quantity, item.UnitPrice*int64(item.Quantity))
	}
	fmt.Printf("\n%-24s %8d원\n", "상품 금액", snapshot.Subtotal)
	fmt.Printf("%-24s %8d원\n", "배송비", snapshot.ShippingFee)
	for _, d := range snapshot.Discounts {
		fmt.Printf("%-24s -%7d원\n", d.Description, d.Amount)
	}
	fmt.Printf("%-24s %8d원\n", "결제 금액", snapshot.Total)
	return nil
}

func showOrder(cmd *cobra.Command, args []string) error {
	client, st, err := newSubcommandClient()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.ServerTimeout())
	defer cancel()

	details, err := client.OrderDetails(ctx, args[0])
	if err != nil {
		logger.Error("order fetch failed", zap.String("order_code", args[0]), zap.Error(err))
		return err
	}

	fmt.Printf("주문 %s (%s, %s)\n\n", details.OrderCode, details.OrderDate, details.OrderStatus)
	for _, item := range details.Items {
		fmt.Printf("%-20s x%-3d %8d원\n", item.Name, item.Quantity, item.UnitPrice*int64(item.Quantity))
	}
	fmt.Printf("\n%-24s %8d원\n", "상품 금액", details.Subtotal)
	if details.DiscountAmount > 0 {
		fmt.Printf("%-24s -%7d원\n", "할인", details.DiscountAmount)
	}
	fmt.Printf("%-24s %8d원\n", "배송비", details.ShippingFee)
	fmt.Printf("%-24s %8d원\n", "결제 금액", details.TotalPrice)
	return nil
}

func showFavorites(cmd *cobra.Command, args []string) error {
	client, st, err := newSubcommandClient()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.ServerTimeout())
	defer cancel()

	favs, err := client.GetFavorites(ctx)
	if err != nil {
		logger.Error("favorites fetch failed", zap.Error(err))
		return err
	}
	if err := st.ReplaceFavorites(favs); err != nil {
		logger.Warn("failed to mirror favorites locally", zap.Error(err))
	}

	if len(favs) == 0 {
		fmt.Println("아직 찜한 레시피가 없어요.")
		return nil
	}
	for _, fav := range favs {
		if fav.URL != "" {
			fmt.Printf("%-30s %s\n", fav.Title, fav.URL)
		} else {
			fmt.Println(fav.Title)
		}
	}
	return nil
}
