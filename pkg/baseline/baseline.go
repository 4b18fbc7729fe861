// Package baseline builds the canonical item set from one nominated submission.
package baseline

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/dtnitsch/llm-log-parser/models"
)

var numberingPrefix = regexp.MustCompile(`^\d+\.\s*`)

// CleanText strips a leading "<digits>. " numbering prefix and surrounding whitespace.
func CleanText(s string) string {
	s = strings.TrimSpace(s)
	s = numberingPrefix.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Registry is an insertion-ordered set of canonical keys.
// It is not safe for concurrent mutation; freeze it before sharing.
type Registry struct {
	items  []models.CanonicalItem
	index  map[string]int
	frozen bool
}

func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Add registers key and reports whether it was new. Empty keys and adds
// after Freeze are ignored.
func (r *Registry) Add(key string) bool {
	if key == "" || r.frozen {
		return false
	}
	if _, ok := r.index[key]; ok {
		return false
	}
	r.index[key] = len(r.items)
	r.items = append(r.items, models.CanonicalItem{Key: key, Index: len(r.items) + 1})
	return true
}

// Freeze ends the build phase; the key set is immutable afterwards.
func (r *Registry) Freeze() { r.frozen = true }

func (r *Registry) Contains(key string) bool {
	_, ok := r.index[key]
	return ok
}

// Keys returns keys in creation order.
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.items))
	for i, it := range r.items {
		keys[i] = it.Key
	}
	return keys
}

// Items returns a copy of the canonical items in creation order.
func (r *Registry) Items() []models.CanonicalItem {
	out := make([]models.CanonicalItem, len(r.items))
	copy(out, r.items)
	return out
}

func (r *Registry) Len() int { return len(r.items) }

// Tagger assigns a language tag to canonical text.
type Tagger interface {
	Tag(text string) string
}

// SetLanguages tags every item. Call before Freeze.
func (r *Registry) SetLanguages(t Tagger) {
	if t == nil || r.frozen {
		return
	}
	for i := range r.items {
		r.items[i].Language = t.Tag(r.items[i].Key)
	}
}

// Build registers the cleaned text of every item in the baseline records.
// Records that failed extraction are skipped with a warning.
func Build(records []models.ParsedRecord, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	reg := NewRegistry()
	for _, rec := range records {
		if rec.Err != nil {
			logger.Warn("skipping baseline record",
				"file", rec.Record.SourceFile,
				"index", rec.Record.Index,
				"error", rec.Err)
			continue
		}
		for _, item := range rec.Items {
			reg.Add(CleanText(item.Text))
		}
	}
	logger.Info("baseline built", "canonical_items", reg.Len())
	return reg
}
