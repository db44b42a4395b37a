package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Shahin2512/HCP-Module/internal/api"
	"github.com/Shahin2512/HCP-Module/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local record store (HTTP, optionally MCP over stdio)",
	Long: `Run the local record store the other commands talk to.

The HTTP API is mounted under /api/v1. With --mcp the same store is also
exposed as MCP tools on stdin/stdout, so stdout carries protocol traffic
and all status output goes to stderr.

Examples:
  hcpcrm serve
  hcpcrm serve --addr 127.0.0.1:9000 --data-dir /tmp/hcpcrm
  hcpcrm serve --mcp`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		dataDir, _ := cmd.Flags().GetString("data-dir")
		withMCP, _ := cmd.Flags().GetBool("mcp")
		if addr == "" {
			addr = appCfg.Server.Addr
		}
		if dataDir == "" {
			dataDir = appCfg.Storage.DataDir
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, addr, dataDir, withMCP)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from server.addr)")
	serveCmd.Flags().String("data-dir", "", "database directory, or :memory: (default from storage.data_dir)")
	serveCmd.Flags().Bool("mcp", false, "also serve MCP tools over stdio")
}

func runServe(ctx context.Context, addr, dataDir string, withMCP bool) error {
	fmt.Fprintf(errOut, "hcpcrm version %s\n", version)

	store, err := storage.Open(dataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(errOut, "warning: closing storage: %v\n", err)
		}
	}()

	deps := api.AppDeps{Store: store, Logger: slog.Default()}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler:           api.NewAppHandler(deps),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		printStep("record store listening on http://%s%s", ln.Addr(), api.Prefix)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		fmt.Fprintln(errOut, "shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if withMCP {
		stdioSrv := server.NewStdioServer(api.NewMCPServer(deps))
		g.Go(func() error {
			slog.Info("MCP server started (stdio transport)")
			if err := stdioSrv.Listen(gctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("mcp stdio server: %w", err)
			}
			return nil
		})
	}

	return g.Wait()
}
