package cmd

import (
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/seasworth/seasworthai/internal/config"
	"github.com/seasworth/seasworthai/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gateway server",
	Long: `Start the gateway server that serves the static pages and forwards
/api requests to the configured upstream services.`,
	Run: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addServeFlags(serveCmd)
}

func addServeFlags(cmd *cobra.Command) {
	defaults := config.DefaultConfig()
	cmd.Flags().StringP("host", "H", defaults.Host, "Host to bind the server to")
	cmd.Flags().IntP("port", "p", defaults.Port, "Port to listen on")
	cmd.Flags().BoolP("debug", "d", false, "Enable debug mode (verbose logging)")
	cmd.Flags().BoolP("verbose", "v", false, "Log every level to the terminal (default: warnings and errors only)")
	cmd.Flags().String("log-format", "", "Log format: text or json")
	cmd.Flags().String("static-dir", "", "Directory holding the static pages")
}

func runServe(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	applyServeFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	configureLogging(cfg)
	warnMissingCredentials(cfg)

	srv := server.NewServer(cfg, cfg.Host, cfg.Port)

	go func() {
		slog.Info("Starting server", "host", cfg.Host, "port", cfg.Port, "static_dir", cfg.StaticDir)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")

	ctx, cancel := server.CreateShutdownContext(30 * time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	slog.Info("Server exited gracefully")
}

// applyServeFlags lets flags win over config and environment, but only
// flags given explicitly on the command line.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("debug") {
		cfg.Debug, _ = flags.GetBool("debug")
	}
	if flags.Changed("verbose") {
		cfg.Verbose, _ = flags.GetBool("verbose")
	}
	if flags.Changed("log-format") {
		cfg.LogFormat, _ = flags.GetString("log-format")
	}
	if flags.Changed("static-dir") {
		cfg.StaticDir, _ = flags.GetString("static-dir")
	}
}

// configureLogging installs the process-wide slog handler.
func configureLogging(cfg *config.Config) {
	level := slog.LevelWarn
	switch {
	case cfg.Debug:
		level = slog.LevelDebug
	case cfg.Verbose:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", level.String(), "format", cfg.LogFormat)
}

// warnMissingCredentials reports unset keys at startup. The affected endpoints
// keep answering with a configuration error; the rest are unaffected.
func warnMissingCredentials(cfg *config.Config) {
	for _, name := range []config.Credential{
		config.CredentialGroq,
		config.CredentialSerper,
		config.CredentialClipdrop,
		config.CredentialCryptoCompare,
		config.CredentialGoogle,
	} {
		if _, ok := cfg.Credentials.Lookup(name); !ok {
			slog.Warn("Credential is not configured", "credential", string(name))
		}
	}
}
