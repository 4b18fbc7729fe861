package aggregate

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/dtnitsch/llm-log-parser/internal/common"
	"github.com/dtnitsch/llm-log-parser/models"
	aggpkg "github.com/dtnitsch/llm-log-parser/pkg/aggregate"
	"github.com/dtnitsch/llm-log-parser/pkg/db"
	"github.com/dtnitsch/llm-log-parser/pkg/flatten"
	"github.com/dtnitsch/llm-log-parser/pkg/langdetect"
	"github.com/dtnitsch/llm-log-parser/pkg/mapreduce"
	"github.com/dtnitsch/llm-log-parser/pkg/report"
	"github.com/urfave/cli/v2"
)

func AggregateAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}
	root, err := common.RootArg(c)
	if err != nil {
		return err
	}
	baselineID := c.String("baseline")

	var opts []aggpkg.Option
	if c.Bool("tag-language") {
		opts = append(opts, aggpkg.WithTagger(langdetect.New()))
	}
	engine, err := aggpkg.NewEngine(cfg, logger, opts...)
	if err != nil {
		return err
	}

	res, err := engine.Aggregate(c.Context, root, baselineID)
	if err != nil {
		return err
	}

	stats := mapreduce.ReduceAll(res.Canonical, res.Mistakes, res.Occurrences, res.Summary.Submissions)
	rows := report.RowsFromStats(stats)
	ropts := report.OptionsFromConfig(cfg.Report)
	header := report.Header{
		Title:   fmt.Sprintf("Mistake report (baseline: %s)", baselineID),
		Source:  root,
		Summary: res.Summary,
	}

	r, err := startRun(cfg, logger, modeAggregate, root, baselineID)
	if err != nil {
		return err
	}
	header.GeneratedAt = r.Created
	perSubmitter := mapreduce.TopN(mapreduce.MistakesPerSubmitter(res.Mistakes), 0)

	writes := []struct {
		name string
		fn   func(io.Writer) error
	}{
		{"1_student_mistakes.json", func(w io.Writer) error { return report.WriteSubmitterMistakes(w, res.Mistakes) }},
		{"2_statistics_summary.json", func(w io.Writer) error { return report.WriteStatistics(w, stats) }},
		{"3_mistakes_per_student.json", func(w io.Writer) error { return report.WriteCounts(w, perSubmitter) }},
		{"mistake_report.csv", func(w io.Writer) error { return report.WriteCSV(w, rows, ropts) }},
		{"mistake_report_detail.txt", func(w io.Writer) error { return report.WriteDetail(w, header, rows, ropts) }},
		{"mistake_report_summary.txt", func(w io.Writer) error { return report.WriteSummary(w, header, rows, ropts) }},
	}
	for _, wr := range writes {
		if err := r.write(wr.name, wr.fn); err != nil {
			return err
		}
	}

	if c.Bool("png") {
		buf, err := report.RenderLeaves(header.Title, rankedPairs(stats, ropts), report.ImageOptions{FontPath: cfg.Report.FontPath})
		if err != nil {
			// The text reports are complete without the image.
			logger.Warn("failed to render PNG summary", "error", err)
		} else if err := r.save("mistake_summary.png", buf.Bytes()); err != nil {
			return err
		}
	}

	if !c.Bool("no-db") {
		recordRun(cfg, logger, r, res, stats)
	}

	if err := r.finish(res.Summary, len(res.Canonical), res.Files, mapreduce.CountMistakeTexts(stats)); err != nil {
		return err
	}

	printSummary(r, res.Summary)
	fmt.Printf("  Canonical:   %d items from %s\n", len(res.Canonical), baselineID)

	if !c.Bool("quiet") {
		printTop(stats, perSubmitter, ropts)
	}
	return nil
}

// recordRun stores the run in the history database. A database failure does
// not fail the run.
func recordRun(cfg *models.Config, logger *slog.Logger, r *run, res *aggpkg.Result, stats []mapreduce.AggregateStats) {
	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		logger.Warn("failed to open database, run not recorded", "error", err)
		return
	}
	defer database.Close()

	err = database.InsertRun(db.Run{
		RunID:     r.ID,
		CreatedAt: r.Created,
		Root:      r.Root,
		Baseline:  r.Baseline,
		RunDir:    r.Dir,
		Summary:   res.Summary,
	}, res.Canonical, stats, res.Mistakes)
	if err != nil {
		logger.Warn("failed to record run", "error", err, "run_id", r.ID)
		return
	}
	logger.Debug("run recorded", "run_id", r.ID, "db", database.Path())
}

// rankedPairs lists the top items by mistake rate as key/value pairs for the
// PNG summary.
func rankedPairs(stats []mapreduce.AggregateStats, opts report.Options) []flatten.Pair {
	ranked := mapreduce.Rank(stats)
	if opts.TopN > 0 && len(ranked) > opts.TopN {
		ranked = ranked[:opts.TopN]
	}
	pairs := make([]flatten.Pair, 0, len(ranked))
	for i, s := range ranked {
		value := fmt.Sprintf("%s (%d/%d)", report.Percent(s.Rate), len(s.MistakeSubmitters), s.Total)
		if len(s.MistakeTexts) > 0 {
			value += "\n" + s.MistakeTexts[0].Key
		}
		pairs = append(pairs, flatten.Pair{
			Key:   fmt.Sprintf("%d. %s", i+1, report.Truncate(s.Key, opts.TruncateWidth)),
			Value: value,
		})
	}
	return pairs
}

func printTop(stats []mapreduce.AggregateStats, perSubmitter []mapreduce.Count, opts report.Options) {
	n := opts.TopN
	if n <= 0 {
		n = 10
	}

	byCount := mapreduce.RankByMistakeCount(stats)
	if len(byCount) > n {
		byCount = byCount[:n]
	}
	fmt.Printf("\nMost mistakes:\n")
	for i, s := range byCount {
		if s.MistakeCount == 0 {
			break
		}
		fmt.Printf("  %2d. [%d] %s\n", i+1, s.MistakeCount, report.Truncate(s.Key, opts.TruncateWidth))
	}

	if len(perSubmitter) > n {
		perSubmitter = perSubmitter[:n]
	}
	if len(perSubmitter) > 0 {
		fmt.Printf("\nMistakes per student:\n")
		for _, c := range perSubmitter {
			fmt.Printf("  %-20s %d\n", c.Key, c.Count)
		}
	}
}

func ScanAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}
	root, err := common.RootArg(c)
	if err != nil {
		return err
	}
	engine, err := aggpkg.NewEngine(cfg, logger)
	if err != nil {
		return err
	}

	res, err := engine.Scan(c.Context, root)
	if err != nil {
		return err
	}

	r, err := startRun(cfg, logger, modeScan, root, "")
	if err != nil {
		return err
	}
	header := report.Header{Title: "Scan report", Source: root, GeneratedAt: res.ScannedAt, Summary: res.Summary}
	ropts := report.OptionsFromConfig(cfg.Report)

	if err := r.write("scan_report.csv", func(w io.Writer) error { return report.WriteScanCSV(w, res.Records) }); err != nil {
		return err
	}
	if err := r.write("scan_report.txt", func(w io.Writer) error { return report.WriteScanReport(w, header, res.Records, ropts) }); err != nil {
		return err
	}
	if err := r.write("scan_results.json", func(w io.Writer) error {
		return report.WriteScanJSON(w, res.ScannedAt, root, cfg.Fields, res.Summary, res.Records)
	}); err != nil {
		return err
	}

	if err := r.finish(res.Summary, 0, res.Files, mapreduce.Map(res.Records)); err != nil {
		return err
	}

	printSummary(r, res.Summary)
	var mistakes, correct int
	for _, rec := range res.Records {
		if rec.IsMistake {
			mistakes++
		} else if rec.IsCorrect {
			correct++
		}
	}
	fmt.Printf("  Mistakes:    %d of %d (%s accuracy)\n", mistakes, len(res.Records),
		report.Percent(mapreduce.Rate(correct, len(res.Records))))
	if res.Summary.UnrecognizedFlags > 0 {
		fmt.Printf("  Unflagged:   %d items with unrecognized flag values\n", res.Summary.UnrecognizedFlags)
	}
	return nil
}

func GroupAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}
	root, err := common.RootArg(c)
	if err != nil {
		return err
	}
	if !cfg.FuzzyMatch {
		logger.Info("grouping always uses fuzzy matching, exact mode ignored")
	}
	engine, err := aggpkg.NewEngine(cfg, logger)
	if err != nil {
		return err
	}

	res, err := engine.Group(c.Context, root)
	if err != nil {
		return err
	}

	r, err := startRun(cfg, logger, modeGroup, root, "")
	if err != nil {
		return err
	}
	rows := report.RowsFromGroups(res.Stats)
	ropts := report.OptionsFromConfig(cfg.Report)
	header := report.Header{Title: "Grouped mistake report", Source: root, GeneratedAt: r.Created, Summary: res.Scan.Summary}

	if err := r.write("grouped_report.csv", func(w io.Writer) error { return report.WriteCSV(w, rows, ropts) }); err != nil {
		return err
	}
	if err := r.write("grouped_report_detail.txt", func(w io.Writer) error { return report.WriteDetail(w, header, rows, ropts) }); err != nil {
		return err
	}
	if err := r.write("grouped_report_summary.txt", func(w io.Writer) error { return report.WriteSummary(w, header, rows, ropts) }); err != nil {
		return err
	}

	if err := r.finish(res.Scan.Summary, len(res.Groups), res.Scan.Files, mapreduce.Map(res.Scan.Records)); err != nil {
		return err
	}

	printSummary(r, res.Scan.Summary)
	fmt.Printf("  Groups:      %d\n", len(res.Groups))
	return nil
}
