package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/juan975/cail-matching/internal/mcp"
	"github.com/juan975/cail-matching/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdio",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// serve runs the MCP server until stdin closes or a signal arrives.
// Logs go to stderr since stdout is reserved for the protocol.
func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := openApplication(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	a.log.Info("MCP server starting",
		zap.String("version", version),
		zap.String("build_mode", storage.BuildMode),
		zap.String("driver", storage.DriverName),
		zap.Bool("vector_extension", storage.VectorExtensionAvailable),
	)

	server := mcp.NewServer(mcp.Deps{
		Matcher:   a.orchestrator,
		Admission: a.workflow,
		Status:    a.store,
	}, a.log)

	errChan := make(chan error, 1)
	go func() {
		a.log.Info("MCP server ready, listening on stdio")
		errChan <- server.Serve(ctx)
	}()

	select {
	case <-ctx.Done():
		a.log.Info("received shutdown signal, stopping")
		return nil
	case err := <-errChan:
		if err != nil {
			a.log.Error("server error", zap.Error(err))
			return err
		}
	}

	a.log.Info("server stopped")
	return nil
}
