package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"slices"
	"sync"

	"github.com/dgallion1/gridlock/internal/merge"
	"github.com/dgallion1/gridlock/internal/page"
	"github.com/dgallion1/gridlock/internal/workspace"
	"golang.org/x/sync/errgroup"
)

// BatchOptions control a workspace batch merge.
type BatchOptions struct {
	// Prefix selects templates/<Prefix>-*.txt. Empty selects every template.
	Prefix string
	Merge  merge.Options
	// Force re-merges pages whose merged output already exists.
	Force       bool
	Concurrency int
}

// BatchSummary counts what a batch merge did. Failed and Missing hold page
// keys in sorted order.
type BatchSummary struct {
	Merged  int      `json:"merged"`
	Skipped int      `json:"skipped"`
	Failed  []string `json:"failed"`
	Missing []string `json:"missing"`
}

// Batch merges every template page of a workspace with its text page and
// writes successful reports to the merged directory.
func Batch(ctx context.Context, ws workspace.Workspace, opts BatchOptions, log *slog.Logger) (BatchSummary, error) {
	var sum BatchSummary
	if err := ws.EnsureDirs(workspace.TemplatesDir, workspace.TextDir, workspace.MergedDir); err != nil {
		return sum, err
	}
	keys, err := ws.Keys(workspace.TemplatesDir, opts.Prefix, "txt")
	if err != nil {
		return sum, err
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	g.SetLimit(limit)
	for _, key := range keys {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcome, err := batchMerge(ws, key, opts)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			switch outcome {
			case outcomeMerged:
				sum.Merged++
			case outcomeSkipped:
				sum.Skipped++
			case outcomeMissing:
				log.Warn("no text for template", "key", key)
				sum.Missing = append(sum.Missing, key)
			case outcomeFailed:
				log.Warn("page did not merge", "key", key)
				sum.Failed = append(sum.Failed, key)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return sum, err
	}
	slices.Sort(sum.Failed)
	slices.Sort(sum.Missing)
	log.Info("batch merge complete", "merged", sum.Merged, "skipped", sum.Skipped,
		"failed", len(sum.Failed), "missing", len(sum.Missing))
	return sum, nil
}

type batchOutcome int

const (
	outcomeMerged batchOutcome = iota
	outcomeSkipped
	outcomeMissing
	outcomeFailed
)

func batchMerge(ws workspace.Workspace, key string, opts BatchOptions) (batchOutcome, error) {
	out := ws.MergedPath(key)
	if !opts.Force && workspace.FileNotEmpty(out) {
		return outcomeSkipped, nil
	}
	if _, err := os.Stat(ws.TextPath(key)); err != nil {
		return outcomeMissing, nil
	}
	template, err := page.LoadFile(ws.TemplatePath(key))
	if err != nil {
		return 0, err
	}
	text, err := page.LoadFile(ws.TextPath(key))
	if err != nil {
		return 0, err
	}

	res := merge.Merge(template, text, opts.Merge)
	if !res.OK {
		return outcomeFailed, nil
	}
	if err := os.WriteFile(out, []byte(res.String()), 0o644); err != nil {
		return 0, fmt.Errorf("write %s: %w", out, err)
	}
	return outcomeMerged, nil
}
