package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/SpikeIreland/clarence-engine/internal/bids"
	"github.com/SpikeIreland/clarence-engine/internal/boundary"
	"github.com/SpikeIreland/clarence-engine/internal/catalog"
	"github.com/SpikeIreland/clarence-engine/internal/clauses"
	"github.com/SpikeIreland/clarence-engine/internal/config"
	"github.com/SpikeIreland/clarence-engine/internal/db"
	"github.com/SpikeIreland/clarence-engine/internal/events"
	"github.com/SpikeIreland/clarence-engine/internal/mediation"
	"github.com/SpikeIreland/clarence-engine/internal/negotiation"
	"github.com/SpikeIreland/clarence-engine/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the negotiation engine server",
	Long:  `Starts the CLARENCE REST API: sessions, clause selections, counterparty bids, alignment, and mediation recommendations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if servePort != 0 {
			cfg.Port = servePort
		}

		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return fmt.Errorf("creating data dir: %w", err)
		}
		database, err := db.Open(cfg.DBPath())
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		assistant, err := createAssistantFromConfig(cfg)
		if err != nil {
			return err
		}

		cat := catalog.Default()
		search, err := createSearchFromConfig(cmd.Context(), cfg, cat)
		if err != nil {
			return err
		}

		srv := server.New(server.Config{
			Port:           cfg.Port,
			AllowedOrigins: cfg.AllowedOrigins,
		}, database)

		registerAllRoutes(srv, database, cfg, cat, search, assistant)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "clarence engine v%s starting on port %d\n", Version, cfg.Port)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", cfg.DBPath())
		if cfg.WebhookURL != "" {
			fmt.Fprintf(os.Stderr, "  Webhook: %s\n", cfg.WebhookURL)
		}

		return srv.Start()
	},
}

// registerAllRoutes wires up all feature routes.
func registerAllRoutes(srv *server.Server, database *db.DB, cfg *config.Config,
	cat *catalog.Catalog, search *catalog.Search, assistant mediation.Assistant) {
	r := srv.Router()

	dispatcher := events.NewDispatcher(database, cfg.WebhookURL)
	events.RegisterRoutes(r, dispatcher)

	// Item catalogue and clause search.
	catalog.RegisterRoutes(r, cat, search)

	// Clause selections and packs.
	clauseStore := clauses.NewStore(database)
	clauses.RegisterRoutes(r, clauseStore, dispatcher)

	// Sessions, items, alignment.
	negStore := negotiation.NewStore(database)
	negotiation.RegisterRoutes(r, negStore, dispatcher)

	// Mediation recommendations.
	recommender := mediation.New(cat)
	mediation.RegisterRoutes(r, recommender, negStore, assistant, dispatcher)

	// Counterparty bids.
	bidStore := bids.NewStore(database)
	bids.RegisterRoutes(r, bidStore, negStore, cat, dispatcher)

	// Inbound webhooks.
	boundary.RegisterRoutes(r, bidStore, negStore, cat, dispatcher)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Override the configured listen port")
	rootCmd.AddCommand(serveCmd)
}
