package mapreduce

import (
	"fmt"
	"sort"
	"strings"
)

// Count is one key and how often it was seen.
type Count struct {
	Key   string `json:"key" yaml:"key"`
	Count int    `json:"count" yaml:"count"`
}

// TopN returns the n most frequent keys, count descending then key ascending.
// Blank keys are dropped. n <= 0 returns all keys.
func TopN(counts map[string]int, n int) []Count {
	var ss []Count
	for k, v := range counts {
		if strings.TrimSpace(k) != "" {
			ss = append(ss, Count{k, v})
		}
	}

	sort.Slice(ss, func(i, j int) bool {
		if ss[i].Count != ss[j].Count {
			return ss[i].Count > ss[j].Count
		}
		return ss[i].Key < ss[j].Key
	})

	if n > 0 && len(ss) > n {
		ss = ss[:n]
	}
	return ss
}

// FormatCounts renders counts as "key:count" strings.
func FormatCounts(cs []Count) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = fmt.Sprintf("%s:%d", c.Key, c.Count)
	}
	return out
}
