package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/timvw/draft-patrol/internal/auditlog"
	"github.com/timvw/draft-patrol/internal/config"
	"github.com/timvw/draft-patrol/internal/monitor"
	"github.com/timvw/draft-patrol/internal/store"
	"github.com/timvw/draft-patrol/internal/token"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <document-id>",
	Short: "Evaluate a single stored document",
	Long: `Run one evaluation cycle for a document already in the store, outside
the monitoring loop. Useful for spot checks and for re-reviewing a record
after the drafting process updated it.

The outcome is printed as JSON. The audit log and the document store are
updated exactly as they would be by the loop.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		documentID := args[0]

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		applyFlags(cfg)

		logger := buildLogger(cfg.LogLevel)
		defer logger.Sync()

		if cfg.PostgresDSN == "" {
			return fmt.Errorf("evaluate needs a document store: set postgres_dsn or DRAFT_PATROL_POSTGRES_DSN")
		}
		pg, err := store.NewPostgres(cfg.PostgresDSN, logger)
		if err != nil {
			return fmt.Errorf("document store: %w", err)
		}
		defer pg.Close()
		if err := pg.Migrate(cmd.Context()); err != nil {
			return fmt.Errorf("document store migrate: %w", err)
		}

		audit, err := auditlog.New(cfg.EvaluationsDir)
		if err != nil {
			return fmt.Errorf("audit log: %w", err)
		}

		gw, err := getGateway(cfg)
		if err != nil {
			return err
		}

		ev := &monitor.Evaluator{
			Store:      pg,
			Gateway:    gw,
			Audit:      audit,
			Collection: cfg.Collection,
			Models: monitor.ModelSet{
				Primary:          cfg.Model,
				PrimaryException: cfg.ModelException,
				Fallback:         cfg.ModelFallback,
			},
			Counter: token.NewCounter(gw.Provider()),
			Logger:  logger,
		}

		outcome := ev.Evaluate(cmd.Context(), documentID)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(outcome)
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
}
