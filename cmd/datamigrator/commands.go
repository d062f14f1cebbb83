package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"datamigrator/internal/output"
	"datamigrator/internal/web"
)

func migrateCmd(flags *globalFlags) *cobra.Command {
	target := &targetFlags{}

	cmd := &cobra.Command{
		Use:   "migrate --file <path>",
		Short: "Migrate a single file into a table",
		Long: `Migrate infers the table of one source file, validates its records, loads
the valid ones into the database named by --dsn and exports the DDL script
and the report. Without a DSN only the script and the report are produced.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig(cmd)
			if err != nil {
				return err
			}
			p, err := flags.newPipeline(cmd, cfg)
			if err != nil {
				return err
			}

			res, err := p.RunFile(cmd.Context(), target.target(cmd))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			r := res.Report
			fmt.Fprintf(out, "Table %s (%s): %s\n", r.Table, r.Source, r.Status())
			fmt.Fprintf(out, "Processed: %d  Valid: %d  Inserted: %d  Errors: %d\n",
				r.Processed, r.Valid, r.Inserted, r.ErrorCount())
			fmt.Fprintf(out, "DDL saved to %s\n", p.Exporter().Path(res.Files.DDL))
			fmt.Fprintf(out, "Report saved to %s\n", p.Exporter().Path(res.Files.Report))
			return nil
		},
	}
	target.register(cmd)
	return cmd
}

func planCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "plan --config <plan.toml>",
		Short: "Migrate every target of a plan, in order",
		Long: `Plan migrates the targets listed in the config file one after another.
A fatal error on one table stops the remaining ones. A consolidated report
is exported in every case.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig(cmd)
			if err != nil {
				return err
			}
			if len(cfg.Targets) == 0 {
				return errors.New("no targets to migrate; list them as [[targets]] in the config file")
			}
			p, err := flags.newPipeline(cmd, cfg)
			if err != nil {
				return err
			}

			res, err := p.RunPlan(cmd.Context(), cfg.Targets)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			plan := res.Report
			for _, t := range plan.Tables {
				fmt.Fprintf(out, "%-30s %s\n", t.Table, t.Label())
			}
			if skipped := plan.Planned - len(plan.Tables); skipped > 0 {
				fmt.Fprintf(out, "%d target(s) skipped\n", skipped)
			}
			fmt.Fprintf(out, "Plan status: %s\n", plan.Status())
			fmt.Fprintf(out, "Report saved to %s\n", p.Exporter().Path(res.ReportFile))
			return res.Err()
		},
	}
}

func inferCmd(flags *globalFlags) *cobra.Command {
	target := &targetFlags{}

	cmd := &cobra.Command{
		Use:   "infer --file <path>",
		Short: "Print the inferred schema and validation report of a file",
		Long: `Infer runs type inference and validation on a source file and prints the
report, including the DDL, without touching any database or writing files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig(cmd)
			if err != nil {
				return err
			}
			cfg.Database.DSN = ""
			p, err := flags.newPipeline(cmd, cfg)
			if err != nil {
				return err
			}

			analysis, err := p.Analyze(cmd.Context(), target.target(cmd))
			if err != nil {
				return err
			}

			f, err := output.NewFormatter(cfg.Output.Format)
			if err != nil {
				return err
			}
			text, err := f.FormatTable(analysis.Report)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}
	target.register(cmd)
	return cmd
}

func serveCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the upload and download HTTP endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig(cmd)
			if err != nil {
				return err
			}
			p, err := flags.newPipeline(cmd, cfg)
			if err != nil {
				return err
			}
			server := web.NewServer(p, cfg.Server)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				slog.Info("server starting", "addr", cfg.Server.Addr, "out", cfg.Output.Dir)
				errCh <- server.Start()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			slog.Info("shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return nil
		},
	}
}
