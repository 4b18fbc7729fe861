// Package mapreduce derives counts, rates and rankings from aggregated records.
package mapreduce

import (
	"sort"

	"github.com/dtnitsch/llm-log-parser/models"
)

// AggregateStats summarizes one canonical key across a run.
type AggregateStats struct {
	Key   string `json:"key"`
	Index int    `json:"index"`
	// Total is the number of submissions seen in the run, not len(records).
	Total       int `json:"total_submissions"`
	Occurrences int `json:"occurrences"`
	// MistakeCount is the number of distinct submitters with a mistake, so
	// Rate is MistakeCount/Total and MistakeCount + Correct() is Total.
	MistakeCount int `json:"mistake_count"`
	// MistakeRecords counts every mistake record, repeats included.
	MistakeRecords    int      `json:"mistake_records"`
	MistakeSubmitters []string `json:"mistake_submitters"`
	Rate              float64  `json:"mistake_rate"`
	UniqueMistakes    []string `json:"unique_mistakes"`
	MistakeTexts      []Count  `json:"mistake_texts"`
}

// Correct is the number of submissions without a mistake on this key.
func (s AggregateStats) Correct() int {
	c := s.Total - len(s.MistakeSubmitters)
	if c < 0 {
		return 0
	}
	return c
}

// Rate returns n/total clamped to [0, 1]; a zero total yields 0.
func Rate(n, total int) float64 {
	if total <= 0 || n <= 0 {
		return 0
	}
	if n >= total {
		return 1
	}
	return float64(n) / float64(total)
}

// ReduceKey computes stats for key. The rate counts distinct submitters with
// a mistake, so a submitter repeating a mistake in several files counts once.
func ReduceKey(key string, records []models.MistakeRecord, totalSubmissions int) AggregateStats {
	st := AggregateStats{Key: key, Total: totalSubmissions}

	seenSubmitter := make(map[string]bool)
	texts := make(map[string]int)
	for _, r := range records {
		if !r.IsMistake {
			continue
		}
		st.MistakeRecords++
		if !seenSubmitter[r.Submitter] {
			seenSubmitter[r.Submitter] = true
			st.MistakeSubmitters = append(st.MistakeSubmitters, r.Submitter)
		}
		if r.Mistake != "" {
			if texts[r.Mistake] == 0 {
				st.UniqueMistakes = append(st.UniqueMistakes, r.Mistake)
			}
			texts[r.Mistake]++
		}
	}
	sort.Strings(st.UniqueMistakes)
	if len(texts) > 0 {
		st.MistakeTexts = TopN(texts, 0)
	}
	st.MistakeCount = len(st.MistakeSubmitters)
	st.Rate = Rate(st.MistakeCount, totalSubmissions)
	return st
}

// ReduceAll computes stats for every canonical item, in item order.
func ReduceAll(items []models.CanonicalItem, mistakes map[string][]models.MistakeRecord, occurrences map[string]int, totalSubmissions int) []AggregateStats {
	out := make([]AggregateStats, 0, len(items))
	for _, it := range items {
		st := ReduceKey(it.Key, mistakes[it.Key], totalSubmissions)
		st.Index = it.Index
		st.Occurrences = occurrences[it.Key]
		out = append(out, st)
	}
	return out
}

// Rank orders stats by mistake rate descending. Ties keep input order, which
// callers pass in canonical-key creation order.
func Rank(stats []AggregateStats) []AggregateStats {
	ranked := make([]AggregateStats, len(stats))
	copy(ranked, stats)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Rate > ranked[j].Rate
	})
	return ranked
}

// RankByMistakeCount orders stats by mistake count descending, stable.
func RankByMistakeCount(stats []AggregateStats) []AggregateStats {
	ranked := make([]AggregateStats, len(stats))
	copy(ranked, stats)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MistakeCount > ranked[j].MistakeCount
	})
	return ranked
}

// MistakesPerSubmitter counts mistake records per submitter.
func MistakesPerSubmitter(mistakes map[string][]models.MistakeRecord) map[string]int {
	counts := make(map[string]int)
	for _, records := range mistakes {
		for _, r := range records {
			if r.IsMistake {
				counts[r.Submitter]++
			}
		}
	}
	return counts
}

// SubmitterMistakes maps each key to submitter -> mistake text, keeping the
// first recorded mistake per submitter. Keys without mistakes are omitted.
func SubmitterMistakes(mistakes map[string][]models.MistakeRecord) map[string]map[string]string {
	out := make(map[string]map[string]string)
	for key, records := range mistakes {
		for _, r := range records {
			if !r.IsMistake {
				continue
			}
			if out[key] == nil {
				out[key] = make(map[string]string)
			}
			if _, ok := out[key][r.Submitter]; !ok {
				out[key][r.Submitter] = r.Mistake
			}
		}
	}
	return out
}
