package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-campcert"
	"github.com/goliatone/go-campcert/internal/server"
	"github.com/goliatone/go-campcert/pkg/renderers/html"
)

var serveAddrFlag string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web editor",
	Long: `Start a local web server with the certificate form and a live preview.
Uploaded avatars stay in memory for the lifetime of the process.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddrFlag, "addr", "", "Listen address (default from config, 127.0.0.1:8080)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	c := cfg
	c.Renderer = html.Name
	if serveAddrFlag != "" {
		c.Server.Addr = serveAddrFlag
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sess, stop, err := startSession(ctx, c)
	if err != nil {
		return err
	}
	defer stop()

	themeCfg, err := campcert.ThemeConfig(c.Theme)
	if err != nil {
		return err
	}
	var assets fs.FS = campcert.AssetsFS()
	if c.Server.AssetsDir != "" {
		assets = os.DirFS(c.Server.AssetsDir)
	}

	srv, err := server.New(sess,
		server.WithCamps(c.Camps),
		server.WithAssets(assets),
		server.WithCSSVars(html.CSSVarsStyle(themeCfg)),
	)
	if err != nil {
		return err
	}
	handler, err := srv.Handler()
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         c.Server.Addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info().Msg("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", c.Server.Addr).Msg("Starting web server")
	fmt.Fprintf(cmd.OutOrStdout(), "\n  campcert: http://%s\n\n", c.Server.Addr)

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
