package aggregate

import (
	"context"
	"path/filepath"
	"time"

	"github.com/dtnitsch/llm-log-parser/models"
	"github.com/dtnitsch/llm-log-parser/pkg/baseline"
	"github.com/dtnitsch/llm-log-parser/pkg/extract"
)

// ScanResult is a flat listing of every item under a root directory.
type ScanResult struct {
	ScannedAt time.Time
	Root      string
	Records   []models.ScanRecord
	Files     []models.FileResult
	Summary   models.RunSummary
}

// Scan reads every submission folder under root and lists all items, correct
// and mistaken alike. A root without subdirectories is read as a single
// submission named after itself.
func (e *Engine) Scan(ctx context.Context, root string) (*ScanResult, error) {
	folders, err := ListSubmissions(root)
	if err != nil {
		return nil, err
	}

	var subs []*extract.Submission
	if len(folders) == 0 {
		sub, err := e.extractor.ReadSubmission(root, filepath.Base(root), e.cfg.Discovery)
		if err != nil {
			return nil, err
		}
		subs = []*extract.Submission{sub}
	} else {
		subs, err = e.readAll(ctx, root, folders, nil)
		if err != nil {
			return nil, err
		}
	}

	res := &ScanResult{ScannedAt: time.Now(), Root: root}
	for _, sub := range subs {
		sub.Tally(&res.Summary)
		res.Files = append(res.Files, sub.Files...)
		res.Records = append(res.Records, e.scanRecords(sub)...)
	}
	for _, r := range res.Records {
		if !r.IsMistake && !r.IsCorrect {
			res.Summary.UnrecognizedFlags++
		}
	}
	if res.Summary.UnrecognizedFlags > 0 {
		e.logger.Warn("items with unrecognized flag values are not counted as correct",
			"items", res.Summary.UnrecognizedFlags)
	}

	e.logger.Info("scan complete",
		"root", root,
		"submissions", res.Summary.Submissions,
		"items", len(res.Records),
		"files_skipped", res.Summary.FilesSkipped)
	return res, nil
}

func (e *Engine) scanRecords(sub *extract.Submission) []models.ScanRecord {
	var out []models.ScanRecord
	for _, rec := range sub.Records {
		for i, item := range rec.Items {
			out = append(out, models.ScanRecord{
				Submitter:     sub.Submitter,
				SourceFile:    rec.Record.SourceFile,
				Timestamp:     rec.Record.Timestamp,
				RecordIndex:   rec.Record.Index,
				SentenceIndex: i + 1,
				Text:          baseline.CleanText(item.Text),
				OriginalText:  item.Text,
				Flag:          item.Flag,
				IsMistake:     e.cfg.IsMistake(item.Flag),
				IsCorrect:     !e.cfg.IsMistake(item.Flag) && e.cfg.IsCorrect(item.Flag),
				Thought:       item.Thought,
				Mistake:       item.Mistake,
				Comment:       item.Comment,
				Input:         item.Input,
			})
		}
	}
	return out
}
