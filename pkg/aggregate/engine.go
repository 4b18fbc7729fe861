// Package aggregate matches every submission's items against a baseline and
// accumulates per-item mistake records.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dtnitsch/llm-log-parser/models"
	"github.com/dtnitsch/llm-log-parser/pkg/baseline"
	"github.com/dtnitsch/llm-log-parser/pkg/extract"
	"github.com/dtnitsch/llm-log-parser/pkg/similarity"
	"golang.org/x/sync/errgroup"
)

// ErrBaselineMissing aborts a run before any aggregation.
var ErrBaselineMissing = errors.New("baseline submission not found")

// Engine runs aggregate, scan and group passes for one configuration.
type Engine struct {
	cfg       *models.Config
	extractor *extract.Extractor
	matcher   *similarity.Matcher
	tagger    baseline.Tagger
	logger    *slog.Logger
}

type Option func(*Engine)

// WithTagger tags canonical items with a language during the baseline pass.
func WithTagger(t baseline.Tagger) Option {
	return func(e *Engine) { e.tagger = t }
}

func NewEngine(cfg *models.Config, logger *slog.Logger, opts ...Option) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	ex, err := extract.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor: %w", err)
	}
	e := &Engine{
		cfg:       cfg,
		extractor: ex,
		matcher:   similarity.NewMatcher(cfg.SimilarityThreshold, cfg.FuzzyMatch),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Result is the outcome of one aggregation run.
type Result struct {
	Baseline  string
	Canonical []models.CanonicalItem
	// Mistakes holds only mistake-flagged records, keyed by canonical key.
	Mistakes map[string][]models.MistakeRecord
	// Occurrences counts every matched item per key, mistake or not.
	Occurrences map[string]int
	Submissions []string
	Files       []models.FileResult
	Summary     models.RunSummary
}

// Aggregate builds the baseline from root/baselineID, then matches the items
// of every submission folder under root, baseline included, against it.
func (e *Engine) Aggregate(ctx context.Context, root, baselineID string) (*Result, error) {
	// The baseline must name one folder directly under root.
	if baselineID == "" || baselineID == "." || baselineID == ".." || strings.ContainsAny(baselineID, `/\`) {
		return nil, fmt.Errorf("%w: invalid folder name %q", ErrBaselineMissing, baselineID)
	}
	baseDir := filepath.Join(root, baselineID)
	info, err := os.Stat(baseDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrBaselineMissing, baseDir)
	}

	baseSub, err := e.extractor.ReadSubmission(baseDir, baselineID, e.cfg.Discovery)
	if err != nil {
		return nil, fmt.Errorf("failed to read baseline: %w", err)
	}
	reg := baseline.Build(baseSub.Records, e.logger)
	reg.SetLanguages(e.tagger)
	reg.Freeze()

	folders, err := ListSubmissions(root)
	if err != nil {
		return nil, err
	}

	subs, err := e.readAll(ctx, root, folders, map[string]*extract.Submission{baselineID: baseSub})
	if err != nil {
		return nil, err
	}

	res := &Result{
		Baseline:    baselineID,
		Canonical:   reg.Items(),
		Mistakes:    make(map[string][]models.MistakeRecord),
		Occurrences: make(map[string]int),
	}

	// Single writer: matching runs in folder order against the frozen registry.
	for _, sub := range subs {
		res.Submissions = append(res.Submissions, sub.Submitter)
		res.Files = append(res.Files, sub.Files...)
		sub.Tally(&res.Summary)
		e.accumulate(res, reg, sub)
	}

	e.logger.Info("aggregation complete",
		"baseline", baselineID,
		"canonical_items", len(res.Canonical),
		"submissions", res.Summary.Submissions,
		"files_processed", res.Summary.FilesProcessed,
		"files_skipped", res.Summary.FilesSkipped,
		"unmatched_items", res.Summary.UnmatchedItems,
		"unrecognized_flags", res.Summary.UnrecognizedFlags)
	return res, nil
}

func (e *Engine) accumulate(res *Result, reg *baseline.Registry, sub *extract.Submission) {
	for _, rec := range sub.Records {
		for _, item := range rec.Items {
			text := baseline.CleanText(item.Text)
			if text == "" {
				continue
			}
			key, ok := e.matcher.Match(text, reg)
			if !ok {
				res.Summary.UnmatchedItems++
				e.logger.Warn("unmatched item",
					"submitter", sub.Submitter,
					"file", rec.Record.SourceFile,
					"text", preview(text, 40))
				continue
			}
			res.Occurrences[key]++
			if !e.cfg.IsMistake(item.Flag) {
				if !e.cfg.IsCorrect(item.Flag) {
					res.Summary.UnrecognizedFlags++
					e.logger.Debug("unrecognized flag value",
						"submitter", sub.Submitter,
						"file", rec.Record.SourceFile,
						"flag", item.Flag)
				}
				continue
			}
			res.Mistakes[key] = append(res.Mistakes[key], models.MistakeRecord{
				Submitter:  sub.Submitter,
				Key:        key,
				IsMistake:  true,
				Mistake:    item.Mistake,
				Comment:    item.Comment,
				SourceFile: rec.Record.SourceFile,
			})
		}
	}
}

// readAll reads every folder with bounded parallelism and returns the
// submissions in folder order. Folders present in done are not re-read.
func (e *Engine) readAll(ctx context.Context, root string, folders []string, done map[string]*extract.Submission) ([]*extract.Submission, error) {
	subs := make([]*extract.Submission, len(folders))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for i, name := range folders {
		if sub, ok := done[name]; ok {
			subs[i] = sub
			continue
		}
		i, name := i, name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sub, err := e.extractor.ReadSubmission(filepath.Join(root, name), name, e.cfg.Discovery)
			if err != nil {
				e.logger.Warn("failed to read submission", "submitter", name, "error", err)
				sub = &extract.Submission{Submitter: name, Dir: filepath.Join(root, name)}
			}
			subs[i] = sub
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return subs, nil
}

// ListSubmissions returns the names of the immediate subdirectories of root, sorted.
func ListSubmissions(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	var names []string
	for _, ent := range entries {
		if ent.IsDir() {
			names = append(names, ent.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
