package main

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/homesignal/leadscore/internal/model"
	"github.com/homesignal/leadscore/internal/scoring"
)

var (
	batchFile        string
	batchLimit       int
	batchConcurrency int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Score leads from a JSON Lines file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initScoring(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		leads, err := readLeadLines(batchFile, batchLimit)
		if err != nil {
			return err
		}

		concurrency := batchConcurrency
		if concurrency == 0 {
			concurrency = cfg.Batch.MaxConcurrent
		}
		return processBatch(ctx, env.Pipeline, leads, concurrency)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "JSON Lines file, one lead per line (required)")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of leads to score (0 = all)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "concurrent scorers (default from config)")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}

// readLeadLines parses one LeadInput per line, skipping blank lines.
func readLeadLines(path string, limit int) ([]model.LeadInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "open batch file")
	}
	defer f.Close()

	var leads []model.LeadInput
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var lead model.LeadInput
		if err := json.Unmarshal(raw, &lead); err != nil {
			return nil, eris.Wrapf(err, "batch file line %d", line)
		}
		leads = append(leads, lead)
		if limit > 0 && len(leads) == limit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrap(err, "read batch file")
	}
	return leads, nil
}

// processBatch scores leads concurrently. Individual failures are logged and
// counted, never abort the batch.
func processBatch(ctx context.Context, p *scoring.Pipeline, leads []model.LeadInput, concurrency int) error {
	if len(leads) == 0 {
		zap.L().Info("no leads to score")
		return nil
	}

	zap.L().Info("processing batch",
		zap.Int("leads", len(leads)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64

	for i, lead := range leads {
		i, lead := i, lead
		g.Go(func() error {
			log := zap.L().With(zap.Int("lead", i))

			result, err := p.Score(gctx, lead)
			if err != nil {
				failed.Add(1)
				log.Error("scoring failed", zap.Error(err))
				return nil // don't abort batch on individual failure
			}

			succeeded.Add(1)
			log.Info("lead scored",
				zap.Int("reranked_score", result.RerankedScore),
				zap.String("intent_level", string(result.IntentLevel)),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "batch scoring")
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return nil
}
