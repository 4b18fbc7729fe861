// Package similarity decides whether a candidate text belongs to an existing
// canonical key, by exact match or by a longest-matching-blocks ratio.
package similarity

import "github.com/pmezard/go-difflib/difflib"

const DefaultThreshold = 0.8

// Matcher matches candidates against an insertion-ordered key list.
type Matcher struct {
	Threshold float64
	// Fuzzy disables the ratio scan when false; only exact matches qualify.
	Fuzzy bool
}

func NewMatcher(threshold float64, fuzzy bool) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{Threshold: threshold, Fuzzy: fuzzy}
}

// KeySet is the view of canonical keys a Matcher needs.
type KeySet interface {
	Contains(key string) bool
	Keys() []string
}

// Match returns the key candidate belongs to. An exact match wins outright.
// Otherwise the first key, in creation order, whose ratio reaches the
// threshold is returned, even if a later key scores higher.
func (m *Matcher) Match(candidate string, keys KeySet) (string, bool) {
	if keys.Contains(candidate) {
		return candidate, true
	}
	if !m.Fuzzy {
		return "", false
	}
	for _, k := range keys.Keys() {
		if Ratio(candidate, k) >= m.Threshold {
			return k, true
		}
	}
	return "", false
}

// Ratio is 2*M/T over runes, where M counts characters in matching blocks
// and T is the combined length. Two empty strings score 1.
func Ratio(a, b string) float64 {
	return difflib.NewMatcher(runes(a), runes(b)).Ratio()
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
