package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"maintenance-scheduler/core/backlog"
	coremetrics "maintenance-scheduler/core/metrics"
	"maintenance-scheduler/core/model"
	"maintenance-scheduler/core/registry"
	"maintenance-scheduler/core/scheduler"
	"maintenance-scheduler/core/scheduler/history"
	"maintenance-scheduler/core/solver"
	"maintenance-scheduler/infra/logger"

	// Registers the built-in metrics sinks.
	_ "maintenance-scheduler/infra/metrics"

	"maintenance-scheduler/pkg/export"
)

var (
	optimizeBacklog string
	optimizeStart   string
	optimizeFormat  string
	optimizeOut     string
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Solve one planning week from a backlog workbook",
	RunE:  runOptimize,
}

func init() {
	optimizeCmd.Flags().StringVar(&optimizeBacklog, "backlog", "", "EAM backlog workbook (xlsx)")
	optimizeCmd.Flags().StringVar(&optimizeStart, "start", "", "horizon start (YYYY-MM-DD), snapped to Monday")
	optimizeCmd.Flags().StringVar(&optimizeFormat, "format", "json", "output format: json, csv or xlsx")
	optimizeCmd.Flags().StringVar(&optimizeOut, "out", "", "output file (default stdout)")
	_ = optimizeCmd.MarkFlagRequired("backlog")
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	start := model.NextMonday(time.Now())
	if optimizeStart != "" {
		d, err := model.ParseDate(optimizeStart)
		if err != nil {
			return err
		}
		start = model.NextMonday(d.Time())
	}

	logg := logger.New("optimize-command")

	f, err := os.Open(optimizeBacklog)
	if err != nil {
		return fmt.Errorf("open backlog: %w", err)
	}
	defer func() { _ = f.Close() }()
	orders, err := backlog.Parse(f, backlog.Options{Start: start, Log: logg})
	if err != nil {
		return fmt.Errorf("parse backlog: %w", err)
	}

	store, err := registry.NewSQLStore(cfg.Registry)
	if err != nil {
		return fmt.Errorf("crew registry: %w", err)
	}
	defer func() { _ = store.Close() }()
	crews, err := store.List(ctx)
	if err != nil {
		return err
	}

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return fmt.Errorf("metrics sink: %w", err)
	}
	opt := scheduler.New(cfg.Scheduler, solver.NewBranchAndBound(), logg, sink)
	if cfg.History.Enabled {
		hist, err := history.New(cfg.History)
		if err != nil {
			return fmt.Errorf("run history: %w", err)
		}
		defer func() { _ = hist.Close() }()
		opt.SetHistory(hist)
	}

	res, err := opt.Optimize(ctx, orders, crews, start)
	if err != nil {
		return err
	}
	for _, id := range res.Dropped {
		logg.Warnf("work order %s dropped from the model", id)
	}

	var out io.Writer = cmd.OutOrStdout()
	if optimizeOut != "" {
		file, err := os.Create(optimizeOut)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() { _ = file.Close() }()
		out = file
	}
	switch optimizeFormat {
	case "json":
		err = export.WriteJSON(out, res.Schedule)
	case "csv":
		err = export.WriteCSV(out, res.Schedule)
	case "xlsx":
		err = export.WriteXLSX(out, res.Schedule)
	default:
		return fmt.Errorf("unknown format %s", optimizeFormat)
	}
	if err != nil {
		return err
	}

	if !res.Status.Succeeded() {
		return fmt.Errorf("solve ended with status %s", res.Status)
	}
	return nil
}
