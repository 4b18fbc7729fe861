package mapreduce

import "github.com/dtnitsch/llm-log-parser/models"

// Map counts the non-empty mistake texts among one submission's scan records.
func Map(records []models.ScanRecord) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		if r.IsMistake && r.Mistake != "" {
			counts[r.Mistake]++
		}
	}
	return counts
}

// Reduce aggregates a slice of count maps into a single map.
func Reduce(intermediate []map[string]int) map[string]int {
	finalResults := make(map[string]int)

	for _, counts := range intermediate {
		for word, count := range counts {
			finalResults[word] += count
		}
	}

	return finalResults
}

// CountMistakeTexts merges the per-key mistake text counts of a run.
func CountMistakeTexts(stats []AggregateStats) map[string]int {
	intermediate := make([]map[string]int, 0, len(stats))
	for _, s := range stats {
		counts := make(map[string]int, len(s.MistakeTexts))
		for _, c := range s.MistakeTexts {
			counts[c.Key] = c.Count
		}
		intermediate = append(intermediate, counts)
	}
	return Reduce(intermediate)
}
