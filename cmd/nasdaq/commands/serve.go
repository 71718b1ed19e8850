package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/nasdaq/internal/api"
	"github.com/wonny/nasdaq/internal/api/handlers"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Starts the REST API server.

This command:
- serves every fetch operation over HTTP
- exposes session state and a manual refresh
- runs the credential warmer when NASDAQ_WARM_SCHEDULE is set

Endpoints:
  GET  /health
  GET  /api/v1/session
  POST /api/v1/session/refresh
  GET  /api/v1/session/watch   (websocket)
  GET  /api/v1/schemas[/{record}]
  GET  /api/v1/companies/{symbol}/{profile|revenue|ratios|insider-trades|institutional-holdings|sec-filings}
  GET  /api/v1/quotes/{symbol}/{historical|dividends|option-chain|short-interest|news|press-releases}
  GET  /api/v1/screener
  GET  /api/v1/calendar/earnings

Example:
  go run ./cmd/nasdaq serve
  go run ./cmd/nasdaq serve --port 8080`,
	RunE: runServe,
}

var (
	servePort string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	// Flags
	serveCmd.Flags().StringVar(&servePort, "port", "", "API server port (default PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	d, err := buildDeps(cmd.Context())
	if err != nil {
		return err
	}
	defer d.Close()

	// Override port if flag is set
	if servePort != "" {
		d.cfg.Port = servePort
	}

	log := d.log
	log.WithFields(map[string]interface{}{
		"port": d.cfg.Port,
		"env":  d.cfg.Env,
	}).Info("Initializing API server")

	// Pick up a credential another instance already minted
	if d.sessions.Restore(cmd.Context()) {
		log.Info("Using shared credential")
	}

	// Credential warmer (optional)
	var jobStats handlers.JobStats
	if d.cfg.Nasdaq.WarmSchedule != "" {
		sched := newWarmerScheduler(d, d.cfg.Nasdaq.WarmSchedule, defaultWarmLead)
		sched.Start()
		defer sched.Stop()
		jobStats = sched
	}

	// Handlers and router
	marketHandler := handlers.NewMarketHandler(d.client, log.WithComponent("api"))
	sessionHandler := handlers.NewSessionHandler(d.sessions, jobStats, log.WithComponent("api"))
	router := api.NewRouter(marketHandler, sessionHandler, log)

	server := api.New(d.cfg, log, router)

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", d.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Serve until interrupted or the listen fails
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.Run(ctx)
}
