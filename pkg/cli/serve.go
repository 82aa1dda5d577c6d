package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/getvisid/visid/pkg/config"
	"github.com/getvisid/visid/pkg/engine"
	"github.com/getvisid/visid/pkg/logging"
)

// shutdownTimeout is the maximum time to wait for graceful shutdown.
const shutdownTimeout = 15 * time.Second

type serveFlags struct {
	configFile    string
	listen        string
	domain        string
	consentFeed   string
	logLevel      string
	logFormat     string
	optInRequired bool
}

var serveFlagVals serveFlags

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the visitor identification server (foreground)",
	Long: `Run the visid server. Every request passes through the visitor
middleware; the /consent endpoint accepts CMP banner callbacks, and a
configured consent feed is discovered and subscribed in the background.`,
	Example: `  # Start with defaults
  visid serve

  # Start with a config file on a custom port
  visid serve --config visid.yaml --listen :8080

  # Fixed cookie scope and no opt-in requirement
  visid serve --domain example.com --opt-in-required=false

  # Subscribe to a CMP consent feed
  visid serve --consent-feed wss://cmp.example.com/feed`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, &serveFlagVals)
	},
}

func runServe(cmd *cobra.Command, flags *serveFlags) error {
	cfg := config.Default()
	if flags.configFile != "" {
		loaded, err := config.LoadFromFile(flags.configFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	// Flags the user actually set win over the file.
	if cmd.Flags().Changed("listen") {
		cfg.Listen = flags.listen
	}
	if cmd.Flags().Changed("domain") {
		cfg.Domain = flags.domain
	}
	if cmd.Flags().Changed("consent-feed") {
		cfg.ConsentFeed = flags.consentFeed
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.LogFormat = flags.logFormat
	}
	// Tri-state: only an explicitly passed flag overrides the file/default.
	if cmd.Flags().Changed("opt-in-required") {
		v := flags.optInRequired
		cfg.OptInRequired = &v
	}

	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: logging.ParseFormat(cfg.LogFormat),
	})

	srv, err := engine.New(cfg, engine.WithLogger(log))
	if err != nil {
		return err
	}
	if err := srv.Start(); err != nil {
		return err
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

func init() {
	f := serveCmd.Flags()
	f.StringVarP(&serveFlagVals.configFile, "config", "c", "", "Path to a YAML or JSON configuration file")
	f.StringVar(&serveFlagVals.listen, "listen", config.DefaultListen, "HTTP listen address")
	f.StringVar(&serveFlagVals.domain, "domain", "", "Fixed cookie scope (default: derived from each request host)")
	f.StringVar(&serveFlagVals.consentFeed, "consent-feed", "", "Websocket URL of a CMP consent event feed")
	f.StringVar(&serveFlagVals.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	f.StringVar(&serveFlagVals.logFormat, "log-format", "text", "Log format (text, json)")
	f.BoolVar(&serveFlagVals.optInRequired, "opt-in-required", true, "Deny tracking for visitors with no recorded consent")
	rootCmd.AddCommand(serveCmd)
}
