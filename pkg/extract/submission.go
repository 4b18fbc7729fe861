package extract

import (
	"github.com/dtnitsch/llm-log-parser/models"
)

// Submission is everything read from one submitter's folder.
type Submission struct {
	Submitter string
	Dir       string
	Records   []models.ParsedRecord
	Files     []models.FileResult
}

// ReadSubmission reads every matching file under dir. Per-file and
// per-record failures are recorded on the result and never returned.
// The error is non-nil only when the folder itself cannot be listed.
func (e *Extractor) ReadSubmission(dir, submitter string, disc models.DiscoveryConfig) (*Submission, error) {
	files, err := DiscoverFiles(dir, disc.FilePattern, disc.Recursive)
	if err != nil {
		return nil, err
	}

	sub := &Submission{Submitter: submitter, Dir: dir}
	for _, path := range files {
		records, fr := e.ReadFile(path, submitter)
		sub.Records = append(sub.Records, records...)
		sub.Files = append(sub.Files, fr)
	}
	return sub, nil
}

// ReadFile parses every raw message of one log file. The file is skipped
// when it cannot be decoded or none of its records yields items.
func (e *Extractor) ReadFile(path, submitter string) ([]models.ParsedRecord, models.FileResult) {
	fr := models.FileResult{Path: path, Submitter: submitter}

	env, err := ReadEnvelope(path)
	if err != nil {
		fr.Status = models.StatusSkipped
		fr.ErrorType = models.ErrorTypeEnvelope
		fr.Error = err.Error()
		e.logger.Warn("skipping file", "file", path, "error_type", fr.ErrorType, "error", err)
		return nil, fr
	}

	raw := Records(env, submitter, path)
	parsed := make([]models.ParsedRecord, 0, len(raw))
	var firstErr error
	for _, rec := range raw {
		items, err := e.Items(rec)
		parsed = append(parsed, models.ParsedRecord{Record: rec, Items: items, Err: err})
		if err != nil {
			e.logRecordError(rec, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		fr.Items += len(items)
	}
	fr.Records = len(raw)

	if fr.Items == 0 {
		fr.Status = models.StatusSkipped
		if firstErr != nil {
			fr.ErrorType = ErrorType(firstErr)
			fr.Error = firstErr.Error()
		} else {
			fr.ErrorType = models.ErrorTypeShape
			fr.Error = "no raw messages"
		}
		return parsed, fr
	}
	fr.Status = models.StatusProcessed
	return parsed, fr
}

func (e *Extractor) logRecordError(rec models.RawRecord, err error) {
	switch ErrorType(err) {
	case models.ErrorTypePayloadNotFound:
		e.logger.Debug("payload not found", "file", rec.SourceFile, "index", rec.Index)
	case models.ErrorTypeParse:
		attrs := []any{"file", rec.SourceFile, "index", rec.Index, "error", err}
		if perr := asParseError(err); perr != nil {
			attrs = append(attrs, "offset", perr.Offset, "context", perr.Context)
		}
		e.logger.Warn("payload parse failed", attrs...)
	default:
		e.logger.Warn("record skipped", "file", rec.SourceFile, "index", rec.Index, "error", err)
	}
}

// Tally adds this submission's file and record outcomes to sum.
func (s *Submission) Tally(sum *models.RunSummary) {
	sum.Submissions++
	for _, f := range s.Files {
		if f.Status == models.StatusProcessed {
			sum.FilesProcessed++
		} else {
			sum.FilesSkipped++
		}
	}
	for _, r := range s.Records {
		sum.Records++
		switch ErrorType(r.Err) {
		case models.ErrorTypePayloadNotFound:
			sum.PayloadNotFound++
		case models.ErrorTypeParse:
			sum.ParseFailures++
		}
		sum.Items += len(r.Items)
	}
}
