package mapreduce

import (
	"sort"

	"github.com/dtnitsch/llm-log-parser/models"
)

// GroupStats summarizes one fuzzy group of scan records. Unlike
// AggregateStats the denominator is the group's own record count.
type GroupStats struct {
	Key          string   `json:"key"`
	Index        int      `json:"index"`
	Total        int      `json:"total"`
	Mistakes     int      `json:"mistakes"`
	Correct      int      `json:"correct"`
	Unflagged    int      `json:"unflagged"`
	Rate         float64  `json:"mistake_rate"`
	MistakeTexts []Count  `json:"mistake_texts"`
	Submitters   []string `json:"submitters"`
}

// ReduceGroup computes stats for the records clustered under key.
func ReduceGroup(index int, key string, records []models.ScanRecord) GroupStats {
	st := GroupStats{Key: key, Index: index, Total: len(records)}
	texts := make(map[string]int)
	seen := make(map[string]bool)
	for _, r := range records {
		if !r.IsMistake {
			if r.IsCorrect {
				st.Correct++
			} else {
				st.Unflagged++
			}
			continue
		}
		st.Mistakes++
		if r.Mistake != "" {
			texts[r.Mistake]++
		}
		if !seen[r.Submitter] {
			seen[r.Submitter] = true
			st.Submitters = append(st.Submitters, r.Submitter)
		}
	}
	st.MistakeTexts = TopN(texts, 0)
	st.Rate = Rate(st.Mistakes, st.Total)
	return st
}

// RankGroups orders groups by mistake rate descending, stable.
func RankGroups(groups []GroupStats) []GroupStats {
	ranked := make([]GroupStats, len(groups))
	copy(ranked, groups)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Rate > ranked[j].Rate
	})
	return ranked
}

// FolderStats is per-submission accuracy for scan mode.
type FolderStats struct {
	Folder    string  `json:"folder"`
	Total     int     `json:"total"`
	Correct   int     `json:"correct"`
	Mistakes  int     `json:"mistakes"`
	Unflagged int     `json:"unflagged"`
	Accuracy  float64 `json:"accuracy"`
}

// FolderAccuracy groups scan records by submitter, sorted by folder name.
// Records with an unrecognized flag lower accuracy.
func FolderAccuracy(records []models.ScanRecord) []FolderStats {
	byFolder := make(map[string]*FolderStats)
	for _, r := range records {
		fs, ok := byFolder[r.Submitter]
		if !ok {
			fs = &FolderStats{Folder: r.Submitter}
			byFolder[r.Submitter] = fs
		}
		fs.Total++
		switch {
		case r.IsMistake:
			fs.Mistakes++
		case r.IsCorrect:
			fs.Correct++
		default:
			fs.Unflagged++
		}
	}

	out := make([]FolderStats, 0, len(byFolder))
	for _, fs := range byFolder {
		fs.Accuracy = Rate(fs.Correct, fs.Total)
		out = append(out, *fs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Folder < out[j].Folder })
	return out
}
