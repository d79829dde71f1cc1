package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/exec-enrich/internal/leads"
	"github.com/sells-group/exec-enrich/internal/model"
)

var (
	batchFile        string
	batchOutput      string
	batchSummary     string
	batchLimit       int
	batchConcurrency int
)

// enricher runs one lead through the pipeline.
type enricher interface {
	Enrich(ctx context.Context, lead model.Lead) *model.CompanyEnrichmentResult
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Enrich every lead in a CSV or XLSX file",
	Long: `Reads leads (company_name, lead_score, priority_tier, website) from a CSV
or XLSX file, enriches them concurrently and writes one JSON result per
line. An optional CSV summary has one line per company.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		list, err := leads.Read(ctx, batchFile)
		if err != nil {
			return eris.Wrap(err, "batch: read leads")
		}
		if batchLimit > 0 && batchLimit < len(list) {
			list = list[:batchLimit]
		}
		zap.L().Info("batch: leads loaded", zap.Int("leads", len(list)), zap.String("file", batchFile))

		env, err := initEnv(ctx, "batch")
		if err != nil {
			return err
		}
		defer env.Close()

		out := io.Writer(os.Stdout)
		if batchOutput != "" && batchOutput != "-" {
			f, err := os.Create(batchOutput)
			if err != nil {
				return eris.Wrap(err, "batch: create output")
			}
			defer f.Close() //nolint:errcheck
			out = f
		}

		var summary *leads.SummaryWriter
		if batchSummary != "" {
			f, err := os.Create(batchSummary)
			if err != nil {
				return eris.Wrap(err, "batch: create summary")
			}
			defer f.Close() //nolint:errcheck
			summary = leads.NewSummaryWriter(f)
		}

		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.MaxConcurrentCompanies
		}

		stats, err := runBatch(ctx, env.Orchestrator, list, concurrency, out, summary)
		zap.L().Info("batch: complete",
			zap.Int("total", stats.Total),
			zap.Int("completed", stats.Completed),
			zap.Int("partial", stats.Partial),
			zap.Int("failed", stats.Failed),
			zap.Int("skipped", stats.Skipped),
			zap.Float64("cost", stats.Cost),
		)
		return err
	},
}

// batchStats counts results by status.
type batchStats struct {
	Total     int
	Completed int
	Partial   int
	Failed    int
	Skipped   int
	Cost      float64
}

func (s *batchStats) add(r *model.CompanyEnrichmentResult) {
	s.Total++
	s.Cost += r.TotalCost
	switch r.Status {
	case model.StatusCompleted:
		s.Completed++
	case model.StatusPartial:
		s.Partial++
	case model.StatusFailed:
		s.Failed++
	case model.StatusSkipped:
		s.Skipped++
	}
}

// runBatch enriches leads with bounded concurrency. Results are written as
// JSON lines in completion order. A failed company never aborts the batch;
// a write error or cancelled context does.
func runBatch(ctx context.Context, e enricher, list []model.Lead, concurrency int, out io.Writer, summary *leads.SummaryWriter) (batchStats, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var (
		mu    sync.Mutex
		stats batchStats
		enc   = json.NewEncoder(out)
	)
	for i, lead := range list {
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gCtx.Err() != nil {
				return nil
			}
			zap.L().Debug("batch: enriching",
				zap.Int("index", i+1),
				zap.Int("total", len(list)),
				zap.String("company", lead.CompanyName),
			)
			result := e.Enrich(gCtx, lead)

			mu.Lock()
			defer mu.Unlock()
			stats.add(result)
			if err := enc.Encode(result); err != nil {
				return eris.Wrap(err, "batch: write result")
			}
			if summary != nil {
				if err := summary.Write(result); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}
	if err := ctx.Err(); err != nil {
		return stats, eris.Wrap(err, "batch: cancelled")
	}
	return stats, nil
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "lead file (.csv or .xlsx)")
	batchCmd.Flags().StringVar(&batchOutput, "output", "-", "JSON lines output path, - for stdout")
	batchCmd.Flags().StringVar(&batchSummary, "summary", "", "optional CSV summary path")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max leads to process (0 = all)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "companies enriched at once (default from config)")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}
