// Package extract reads workflow log files and recovers graded items from
// their embedded payloads.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/dtnitsch/llm-log-parser/models"
	"github.com/dtnitsch/llm-log-parser/pkg/flatten"
	"github.com/dtnitsch/llm-log-parser/pkg/parser"
	"github.com/dtnitsch/llm-log-parser/pkg/payload"
)

// ErrShape is returned when a payload parses but holds no items of the
// configured shape.
var ErrShape = errors.New("payload has no items")

// Extractor turns raw records into items using one field mapping.
type Extractor struct {
	locator *payload.Locator
	fields  models.FieldConfig
	logger  *slog.Logger
}

func New(cfg *models.Config, logger *slog.Logger) (*Extractor, error) {
	loc, err := payload.NewLocator(cfg.Payload)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{locator: loc, fields: cfg.Fields, logger: logger}, nil
}

// Payload locates, repairs and parses the payload of one raw record.
func (e *Extractor) Payload(raw string) (*parser.Node, error) {
	text, err := e.locator.LocateAndRepair(raw)
	if err != nil {
		return nil, err
	}
	return parser.Parse(text)
}

// Items reads the graded items out of a record. Items normally sit under the
// data field as a sequence of maps; a root map or sequence carrying the text
// field directly is accepted too.
func (e *Extractor) Items(rec models.RawRecord) ([]models.Item, error) {
	root, err := e.Payload(rec.Raw)
	if err != nil {
		return nil, err
	}

	container := root
	if data, ok := root.Get(e.fields.DataField); ok {
		container = data
	}

	var items []models.Item
	switch container.Kind {
	case parser.KindSeq:
		for _, n := range container.Items {
			if it, ok := e.item(n); ok {
				items = append(items, it)
			}
		}
	case parser.KindMap:
		if it, ok := e.item(container); ok {
			items = append(items, it)
		}
	}
	if len(items) == 0 {
		return nil, ErrShape
	}
	return items, nil
}

func (e *Extractor) item(n *parser.Node) (models.Item, bool) {
	if n.Kind != parser.KindMap {
		return models.Item{}, false
	}
	if _, ok := n.Get(e.fields.TextField); !ok {
		return models.Item{}, false
	}
	return models.Item{
		Text:    n.GetString(e.fields.TextField),
		Flag:    n.GetString(e.fields.FlagField),
		Mistake: n.GetString(e.fields.MistakeField),
		Comment: n.GetString(e.fields.CommentField),
		Input:   n.GetString(e.fields.InputField),
		Thought: n.GetString(e.fields.ThoughtField),
	}, true
}

// Leaves returns the flattened leaf pairs of a record's payload.
func (e *Extractor) Leaves(raw string) ([]flatten.Pair, error) {
	root, err := e.Payload(raw)
	if err != nil {
		return nil, err
	}
	return flatten.Flatten(root), nil
}

// ReadEnvelope decodes one log file.
func ReadEnvelope(path string) (*models.Envelope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var env models.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode envelope: %w", err)
	}
	return &env, nil
}

// Records converts an envelope into raw records owned by submitter.
func Records(env *models.Envelope, submitter, path string) []models.RawRecord {
	records := make([]models.RawRecord, 0, len(env.RawMessages))
	for i, m := range env.RawMessages {
		ts := m.Timestamp
		if ts == "" {
			ts = env.Timestamp
		}
		idx := m.MessageIndex
		if idx == 0 {
			idx = i + 1
		}
		records = append(records, models.RawRecord{
			Submitter:  submitter,
			Timestamp:  ts,
			Raw:        m.RawContent,
			SourceFile: path,
			Index:      idx,
		})
	}
	return records
}

// ErrorType classifies a per-record error for FileResult.
func ErrorType(err error) string {
	var perr *parser.ParseError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, payload.ErrNotFound):
		return models.ErrorTypePayloadNotFound
	case errors.As(err, &perr):
		return models.ErrorTypeParse
	case errors.Is(err, ErrShape):
		return models.ErrorTypeShape
	default:
		return models.ErrorTypeRead
	}
}

// DiscoverFiles lists files in dir matching pattern, sorted by path so that
// first-occurrence tie-breaks are reproducible across runs.
func DiscoverFiles(dir, pattern string, recursive bool) ([]string, error) {
	var files []string
	if !recursive {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("invalid file pattern: %w", err)
		}
		for _, m := range matches {
			if info, err := os.Stat(m); err == nil && info.Mode().IsRegular() {
				files = append(files, m)
			}
		}
		sort.Strings(files)
		return files, nil
	}

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ok, err := filepath.Match(pattern, d.Name())
		if err != nil {
			return fmt.Errorf("invalid file pattern: %w", err)
		}
		if ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

func asParseError(err error) *parser.ParseError {
	var perr *parser.ParseError
	if errors.As(err, &perr) {
		return perr
	}
	return nil
}
