package similarity

import (
	"math"
	"testing"

	"github.com/dtnitsch/llm-log-parser/pkg/baseline"
)

func keys(ks ...string) *baseline.Registry {
	r := baseline.NewRegistry()
	for _, k := range ks {
		r.Add(k)
	}
	return r
}

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"他很好。", "他很好", 6.0 / 7.0},
		{"abc", "abc", 1},
		{"abc", "xyz", 0},
		{"", "", 1},
		{"测试句子", "测试", 4.0 / 6.0},
	}
	for _, tt := range tests {
		if got := Ratio(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestMatch_Exact(t *testing.T) {
	m := NewMatcher(0.8, true)
	// "他很好" is fuzzy-close to the first key but exact for the second
	got, ok := m.Match("他很好", keys("他很好。", "他很好"))
	if !ok || got != "他很好" {
		t.Errorf("Match() = %q, %v, want exact key", got, ok)
	}
}

func TestMatch_FirstQualifyingWins(t *testing.T) {
	m := NewMatcher(0.8, true)
	// both keys qualify; the second is a closer match but was created later
	ks := keys("今天天气很好啊", "今天天气很好。")
	got, ok := m.Match("今天天气很好", ks)
	if !ok || got != "今天天气很好啊" {
		t.Errorf("Match() = %q, %v, want first created key", got, ok)
	}
}

func TestMatch_Clusters(t *testing.T) {
	m := NewMatcher(DefaultThreshold, true)
	got, ok := m.Match("他很好", keys("他很好。"))
	if !ok || got != "他很好。" {
		t.Errorf("Match() = %q, %v, want 他很好。", got, ok)
	}
}

func TestMatch_NoMatch(t *testing.T) {
	m := NewMatcher(0.8, true)
	if got, ok := m.Match("完全不同", keys("他很好。", "测试句子")); ok {
		t.Errorf("Match() = %q, want no match", got)
	}
	if got, ok := m.Match("x", keys()); ok {
		t.Errorf("Match() on empty set = %q, want no match", got)
	}
}

func TestMatch_FuzzyDisabled(t *testing.T) {
	m := NewMatcher(0.8, false)
	if got, ok := m.Match("他很好", keys("他很好。")); ok {
		t.Errorf("Match() = %q, want no match with fuzzy off", got)
	}
}

func TestNewMatcher_DefaultThreshold(t *testing.T) {
	if m := NewMatcher(0, true); m.Threshold != DefaultThreshold {
		t.Errorf("Threshold = %v, want %v", m.Threshold, DefaultThreshold)
	}
}
