package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"fcunfollow/internal/server"
	"fcunfollow/pkg/auth"
	"fcunfollow/pkg/config"
	"fcunfollow/pkg/logger"
	"fcunfollow/pkg/neynar"
	"fcunfollow/pkg/ratelimit"
	"fcunfollow/pkg/scanner"
)

const shutdownGracePeriod = 10 * time.Second

var (
	serveHost        string
	servePort        int
	serveScansPerMin int
	serveCredsLabel  string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Run the fcunfollow HTTP API server.

Endpoints:
  POST /api/scan       analyze a user's following list
  POST /api/unfollow   unfollow a target FID
  POST /api/user-info  fetch a user's Neynar profile
  GET  /api/debug      request diagnostics
  GET  /api/frame      Farcaster frame metadata
  GET  /health         health check

Neynar credentials are read from stored credentials ('fcunfollow auth
login'), the NEYNAR_API_KEY / NEYNAR_SIGNER_UUID environment variables,
or the config file. The server starts without credentials, but scan and
unfollow requests will fail until they are configured.`,
	Example: `  # Serve on the default port
  fcunfollow serve

  # Serve on a specific host and port
  fcunfollow serve --host 0.0.0.0 --port 9090`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "host to bind to")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on")
	serveCmd.Flags().IntVar(&serveScansPerMin, "scans-per-minute", 0, "scan rate limit per client")
	serveCmd.Flags().StringVar(&serveCredsLabel, "credentials", "", "stored credentials label to use")
}

func runServe(cmd *cobra.Command, args []string) error {
	flags := globalFlags()
	if servePort > 0 {
		flags["port"] = servePort
	}
	if serveScansPerMin > 0 {
		flags["scans-per-minute"] = serveScansPerMin
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()

	// Fill in credentials from the credential store when the
	// environment and config file did not provide them
	if !cfg.Neynar.HasCredentials() {
		fillStoredCredentials(cfg, log)
	}
	if !cfg.Neynar.HasCredentials() {
		log.Warn("Neynar credentials not fully configured; scan and unfollow requests will fail")
	}

	client := neynar.NewClient(cfg.Neynar, cfg.RateLimit, log)
	limiter := ratelimit.NewWindow(cfg.RateLimit.ScanRequests, cfg.RateLimit.ScanWindow)
	scan := scanner.New(client, log)
	handlers := server.NewHandlers(scan, client, limiter, cfg, log)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server.SetupRoutes(handlers),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	logger.LogComponentStart("http_server", map[string]interface{}{
		"addr":             cfg.Server.Addr(),
		"scans_per_minute": cfg.RateLimit.ScanRequests,
		"has_credentials":  cfg.Neynar.HasCredentials(),
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		logger.LogComponentStop("http_server", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

// fillStoredCredentials loads credentials from the credential manager
// into the config, preferring the label given on the command line
func fillStoredCredentials(cfg *config.Config, log logger.Logger) {
	manager, err := auth.NewManager()
	if err != nil {
		log.WithError(err).Debug("Credential manager unavailable")
		return
	}

	var creds *auth.Credentials
	if serveCredsLabel != "" {
		creds, err = manager.Retrieve(serveCredsLabel)
	} else {
		creds, err = manager.RetrieveDefault()
	}
	if err != nil {
		log.WithError(err).Debug("No stored credentials found")
		return
	}

	if cfg.Neynar.APIKey == "" {
		cfg.Neynar.APIKey = creds.APIKey
	}
	if cfg.Neynar.SignerUUID == "" {
		cfg.Neynar.SignerUUID = creds.SignerUUID
	}

	log.WithField("label", creds.Label).Info("Loaded stored Neynar credentials")
}
