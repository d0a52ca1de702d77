// Command retain runs the student risk pipeline, serves the audit read
// API, logs interventions, and seeds demo cohorts.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tovu/retain/internal/adapters/advisory"
	"github.com/tovu/retain/internal/adapters/http/api"
	"github.com/tovu/retain/internal/adapters/ingest"
	"github.com/tovu/retain/internal/adapters/output"
	"github.com/tovu/retain/internal/adapters/repository"
	"github.com/tovu/retain/internal/app"
	"github.com/tovu/retain/internal/config"
	"github.com/tovu/retain/internal/seed"
	"github.com/tovu/retain/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

const defaultSeedCount = 100

var cfg *config.Config

// Flags.
var (
	csvPath    string
	outputPath string
	fromDB     bool

	interveneType    string
	interveneNotes   string
	interveneStatus  string
	interveneOutcome string

	seedCount int
	seedPath  string
)

var rootCmd = &cobra.Command{
	Use:           "retain",
	Short:         "Student risk assessment and recommendation engine",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := logger.Init(); err != nil {
			return fmt.Errorf("initialize logging: %w", err)
		}
		var err error
		cfg, err = config.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := logger.SetLevelString(cfg.LogLevel); err != nil {
			logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
				logger.String("log_level", cfg.LogLevel), logger.Error(err))
			_ = logger.SetLevelString("info")
		}
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Score a cohort and write the recommendation report",
	Long: `Reads student signals from a CSV file (or the latest stored
observations with --from-db), scores each student, produces a
recommendation per student, appends everything to the audit store and
writes the JSON report.`,
	RunE: runPipeline,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read-only audit API",
	RunE:  runServe,
}

var interveneCmd = &cobra.Command{
	Use:   "intervene [student-id]",
	Short: "Log a human intervention for a student",
	Args:  cobra.ExactArgs(1),
	RunE:  runIntervene,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate a synthetic student cohort CSV",
	RunE:  runSeed,
}

func init() {
	runCmd.Flags().StringVar(&csvPath, "csv", "", "students CSV path (overrides config)")
	runCmd.Flags().StringVar(&outputPath, "output", "", "report path (overrides config)")
	runCmd.Flags().BoolVar(&fromDB, "from-db", false, "re-assess the latest stored signals instead of reading a CSV")

	interveneCmd.Flags().StringVar(&interveneType, "type", "", "intervention type, e.g. advisor_meeting (required)")
	interveneCmd.Flags().StringVar(&interveneNotes, "notes", "", "free-form notes")
	interveneCmd.Flags().StringVar(&interveneStatus, "status", "open", "intervention status")
	interveneCmd.Flags().StringVar(&interveneOutcome, "outcome", "", "outcome, once known")
	_ = interveneCmd.MarkFlagRequired("type")

	seedCmd.Flags().IntVar(&seedCount, "count", defaultSeedCount, "number of students to generate")
	seedCmd.Flags().StringVar(&seedPath, "out", "", "CSV path to write (defaults to the configured students CSV)")

	rootCmd.AddCommand(runCmd, serveCmd, interveneCmd, seedCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Stderr.WriteString("retain: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func openStore(ctx context.Context) (*repository.SQLiteStore, error) {
	store, err := repository.NewSQLiteStore(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open audit store: %w", err)
	}
	return store, nil
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := logger.Get()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	var source ingest.Source
	persistSignals := true
	if fromDB {
		source = ingest.NewStoreSource(store)
		persistSignals = false
	} else {
		path := cfg.StudentsCSV
		if csvPath != "" {
			path = csvPath
		}
		source = ingest.NewCSVSource(path)
	}

	advisor, err := advisory.New(ctx, cfg.AdvisoryAPIKey, advisory.WithModel(cfg.AdvisoryModel))
	if err != nil {
		return fmt.Errorf("create advisory client: %w", err)
	}
	if !advisor.Configured() {
		log.Info(ctx, "advisory service not configured; all recommendations use the fallback policy")
	}
	engine := decisionEngine(advisor)

	out := cfg.OutputPath
	if outputPath != "" {
		out = outputPath
	}

	svc := app.New(source, newScorer(), engine, store, output.NewFileWriter(out),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithModelUsed(advisor.Model()),
		app.WithSignalPersistence(persistSignals),
	)

	summary, err := svc.Run(ctx)
	if err != nil && summary.Processed == 0 {
		return err
	}
	if err != nil {
		log.Warn(ctx, "pipeline finished with failures",
			logger.Int("failed", summary.Failed), logger.Error(err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "processed %d students (%d failed), report at %s\n",
		summary.Processed, summary.Failed, summary.OutputPath)
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := logger.Get()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	mux := http.NewServeMux()
	api.NewServer(store, cfg.MaxRiskListLimit).Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info(ctx, "server stopped")
	return nil
}

func runIntervene(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	iv := newIntervention(args[0])
	if err := store.AppendIntervention(ctx, iv); err != nil {
		return fmt.Errorf("log intervention: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "logged intervention %s for student %s\n", iv.ID, iv.StudentID)
	return nil
}

func runSeed(cmd *cobra.Command, _ []string) error {
	path := cfg.StudentsCSV
	if seedPath != "" {
		path = seedPath
	}
	if err := seed.Generate(cmd.Context(), seed.Config{NumStudents: seedCount, Path: path}); err != nil {
		return fmt.Errorf("seed cohort: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d students to %s\n", seedCount, path)
	return nil
}
