// Package payload locates the escaped structured payload embedded in a raw
// workflow log string and repairs its escaping.
package payload

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dtnitsch/llm-log-parser/models"
)

// ErrNotFound is returned when the delimiters are absent. It is an expected
// outcome: not every raw message carries a payload.
var ErrNotFound = errors.New("payload not found")

// Delimiter is either a literal marker pair or a regexp with one capture group.
type Delimiter struct {
	Start   string
	End     string
	Pattern *regexp.Regexp
}

// Locator extracts and repairs payloads for one delimiter configuration.
type Locator struct {
	delim Delimiter
}

// NewLocator builds a Locator from config. A configured pattern takes
// precedence over the marker pair.
func NewLocator(cfg models.PayloadConfig) (*Locator, error) {
	d := Delimiter{Start: cfg.StartMarker, End: cfg.EndMarker}
	if cfg.Pattern != "" {
		re, err := regexp.Compile(cfg.Pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile payload pattern: %w", err)
		}
		if re.NumSubexp() != 1 {
			return nil, fmt.Errorf("payload pattern must have exactly one capture group, got %d", re.NumSubexp())
		}
		d.Pattern = re
	} else if d.Start == "" || d.End == "" {
		return nil, errors.New("payload markers must not be empty")
	}
	return &Locator{delim: d}, nil
}

// LocateAndRepair returns the repaired payload text or ErrNotFound.
func (l *Locator) LocateAndRepair(raw string) (string, error) {
	s, err := l.Locate(raw)
	if err != nil {
		return "", err
	}
	return Repair(s), nil
}

// Locate returns the raw payload substring without repair.
func (l *Locator) Locate(raw string) (string, error) {
	if l.delim.Pattern != nil {
		m := l.delim.Pattern.FindStringSubmatch(raw)
		if m == nil {
			return "", ErrNotFound
		}
		return m[1], nil
	}

	start := strings.Index(raw, l.delim.Start)
	if start < 0 {
		return "", ErrNotFound
	}
	start += len(l.delim.Start)
	end := strings.Index(raw[start:], l.delim.End)
	if end < 0 {
		return "", ErrNotFound
	}
	return raw[start : start+end], nil
}

// repairRules run in order; a later rule must not undo an earlier one.
var repairRules = []struct{ old, new string }{
	{`\'`, `'`},
	{`\"`, `"`},
	{`\\n`, `\n`},
}

// Repair normalizes the producer's escape sequences. It is deliberately
// narrow: any other escape form is left alone and fails at parse time.
func Repair(s string) string {
	for _, r := range repairRules {
		s = strings.ReplaceAll(s, r.old, r.new)
	}
	return s
}
