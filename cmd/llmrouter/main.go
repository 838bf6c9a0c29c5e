// Command llmrouter runs the local LLM reverse-proxy: an OpenAI-compatible
// HTTP front end that classifies each request into a cost tier, picks a
// model, translates wire dialects, and streams the response back.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/llmrouter/router/internal/config"
	"github.com/llmrouter/router/internal/gatewaycatalog"
	"github.com/llmrouter/router/internal/keyresolver"
	"github.com/llmrouter/router/internal/monitoring"
	"github.com/llmrouter/router/internal/proxy"
	"github.com/llmrouter/router/internal/routingconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// version is set at build time via -ldflags; "dev" covers local builds.
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("llmrouter", flag.ContinueOnError)
	fs.Usage = func() { printHelp(fs) }

	showVersion := fs.Bool("version", false, "print version and exit")
	fs.BoolVar(showVersion, "v", false, "print version and exit (shorthand)")
	showHelp := fs.Bool("help", false, "show this help message")
	fs.BoolVar(showHelp, "h", false, "show this help message (shorthand)")
	port := fs.Int("port", 0, "port to listen on (overrides LLMROUTER_PORT and config default)")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *showVersion {
		fmt.Println("llmrouter " + version)
		return 0
	}
	if *showHelp {
		printHelp(fs)
		return 0
	}

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.NewConsoleWriter())

	rt, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("llmrouter: failed to load configuration")
		return 1
	}
	if *port > 0 {
		rt.Port = *port
	}
	if rt.Disabled {
		log.Info().Msg("llmrouter: disabled via LLMROUTER_DISABLED, exiting")
		return 0
	}
	if len(rt.Keys.DirectKeys) == 0 && rt.Keys.GatewayKey == "" && rt.Keys.BedrockRegion == "" {
		log.Error().Msg("llmrouter: no provider keys configured (set e.g. ANTHROPIC_API_KEY, OPENAI_API_KEY, or a gateway key)")
		return 1
	}

	classifierCfg, agenticThreshold, err := routingconfig.Load(rt.RoutingConfigPath)
	if err != nil {
		log.Error().Err(err).Msg("llmrouter: failed to load routing config")
		return 1
	}

	resolver := keyresolver.New(rt.Keys)

	var catalog *gatewaycatalog.Catalog
	if rt.Keys.GatewayURL != "" {
		catalog = gatewaycatalog.New(rt.Keys.GatewayURL, rt.Keys.GatewayKey, nil)
		defer catalog.Stop()
	}

	tracker, err := monitoring.NewTracker(monitoring.TelemetryConfig{
		Enabled:     rt.TelemetryLogPath != "",
		LogPath:     rt.TelemetryLogPath,
		LogToStdout: false,
	})
	if err != nil {
		log.Error().Err(err).Msg("llmrouter: failed to start telemetry tracker")
		return 1
	}
	defer func() { _ = tracker.Close() }()

	store, err := monitoring.OpenStore(rt.StatsDBPath)
	if err != nil {
		log.Error().Err(err).Msg("llmrouter: failed to open stats store")
		return 1
	}
	defer func() { _ = store.Close() }()

	server := proxy.NewServer(proxy.Config{
		Resolver:          resolver,
		ClassifierCfg:     classifierCfg,
		AgenticThreshold:  agenticThreshold,
		Catalog:           catalog,
		Monitor:           tracker,
		Stats:             store,
		CostControl:       rt.CostControl,
		DedupTTL:          config.DefaultDedupTTL,
		SessionTTL:        config.DefaultSessionTTL,
		RateLimitCooldown: config.DefaultRateLimitCooldown,
	})

	addr := fmt.Sprintf(":%d", rt.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server.Mux(),
		WriteTimeout: config.DefaultServerWriteTimeout,
	}

	log.Info().Str("addr", addr).Msg("llmrouter: listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("llmrouter: server stopped")
		return 1
	}
	return 0
}

func printHelp(fs *flag.FlagSet) {
	isTTY := term.IsTerminal(int(os.Stdout.Fd()))
	if isTTY {
		fmt.Println("┌─────────────────────────────────────────────┐")
		fmt.Println("│ llmrouter - local LLM reverse-proxy / router │")
		fmt.Println("└─────────────────────────────────────────────┘")
	} else {
		fmt.Println("llmrouter - local LLM reverse-proxy / router")
	}
	fmt.Println()
	fmt.Println("Usage: llmrouter [flags]")
	fmt.Println()
	fs.PrintDefaults()
}
