package cli

import (
	"context"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/specdiff/internal/pipeline"
	"github.com/roach88/specdiff/internal/spec"
)

func runDiff(opts *RootOptions, specPath string, cmd *cobra.Command) error {
	logger := newLogger(opts, cmd.ErrOrStderr()).With("run_id", newRunID())

	if opts.CoreThreads > 0 {
		runtime.GOMAXPROCS(int(opts.CoreThreads))
	}

	snap, err := spec.Load(specPath)
	if err != nil {
		logger.Error("failed to load specification", "path", specPath, "error", err)
		return exitErrorf(ExitCommandError, "failed to load specification: %w", err)
	}
	logger.Debug("specification loaded",
		"path", specPath,
		"title", snap.Info().Title,
		"paths", len(snap.Paths()),
		"operations", snap.OperationCount(),
	)

	budget := pipeline.ConcurrencyBudget(int(opts.CoreThreads))
	logger.Info("diff concurrency budget", "budget", budget)

	var reg *prometheus.Registry
	var metrics *pipeline.Metrics
	if opts.MetricsFile != "" {
		reg = prometheus.NewRegistry()
		metrics = pipeline.NewMetrics(reg)
	}

	p, err := pipeline.New(snap, pipeline.Config{
		Budget:  budget,
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		return exitErrorf(ExitCommandError, "failed to create pipeline: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	stats, err := p.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	logger.Info("diff finished",
		"records", stats.Records,
		"blank", stats.Blank,
		"skipped", stats.Skipped,
		"compared", stats.Compared,
		"written", stats.Written,
		"peak_concurrency", stats.Peak,
	)
	if reg != nil {
		// Best-effort.
		if werr := prometheus.WriteToTextfile(opts.MetricsFile, reg); werr != nil {
			logger.Warn("failed to write metrics file", "path", opts.MetricsFile, "error", werr)
		}
	}
	if err != nil {
		logger.Error("diff pipeline failed", "error", err)
		return exitErrorf(ExitFailure, "diff pipeline failed: %w", err)
	}
	return nil
}
