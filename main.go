package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"hopscotch/config"
	"hopscotch/game"
	"hopscotch/server"
)

// Hopscotch 入口：启动 HTTP + WebSocket 服务，或列出关卡表
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "hopscotch",
		Short:        "Hopscotch sequence game server",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newRoundsCmd(), newConfigCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var (
		cfgPath string
		addr    string
		webDir  string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the websocket game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("web") {
				cfg.WebDir = webDir
			}
			if err := server.InitLogger(cfg.Log); err != nil {
				return err
			}
			defer server.SyncLogger()
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "hopscotch.yaml", "path to YAML config")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "server listen address, e.g. :8080")
	cmd.Flags().StringVar(&webDir, "web", "web", "static web directory")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, game.DefaultCatalog())
	// 先预创建一个默认房间，便于快速试跑
	if _, err := srv.Rooms().GetOrCreateRoom("room-1"); err != nil {
		return err
	}
	httpSrv := &http.Server{Addr: cfg.Addr, Handler: srv.Handler(), ReadHeaderTimeout: 10 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		server.Log.Infof("Hopscotch listening on %s", cfg.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		// 优雅退出（Ctrl+C）
		<-gctx.Done()
		server.Log.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := httpSrv.Shutdown(shutdownCtx)
		srv.Close()
		return err
	})
	return g.Wait()
}

func newRoundsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rounds",
		Short: "Print the round catalog as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(server.RoundViews(game.DefaultCatalog()))
		},
	}
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the server configuration file",
	}
	var (
		path  string
		force bool
	)
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration (defaults + env) as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			cfg, err := config.Load("")
			if err != nil {
				return err
			}
			if err := cfg.Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().StringVar(&path, "path", "hopscotch.yaml", "output path")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)
	return cmd
}
