package aggregate

import (
	"context"

	"github.com/dtnitsch/llm-log-parser/models"
	"github.com/dtnitsch/llm-log-parser/pkg/baseline"
	"github.com/dtnitsch/llm-log-parser/pkg/mapreduce"
	"github.com/dtnitsch/llm-log-parser/pkg/similarity"
)

// Group is one fuzzy cluster of scan records under its first text.
type Group struct {
	Key     string
	Records []models.ScanRecord
}

// GroupResult is the outcome of a grouping pass.
type GroupResult struct {
	Scan   *ScanResult
	Groups []Group
	Stats  []mapreduce.GroupStats
}

// Group scans root and clusters every item without a baseline: each text is
// matched against the keys created so far and starts a new group on a miss.
func (e *Engine) Group(ctx context.Context, root string) (*GroupResult, error) {
	scan, err := e.Scan(ctx, root)
	if err != nil {
		return nil, err
	}
	groups := e.Cluster(scan.Records)

	stats := make([]mapreduce.GroupStats, len(groups))
	for i, g := range groups {
		stats[i] = mapreduce.ReduceGroup(i+1, g.Key, g.Records)
	}

	e.logger.Info("grouping complete", "items", len(scan.Records), "groups", len(groups))
	return &GroupResult{Scan: scan, Groups: groups, Stats: stats}, nil
}

// Cluster groups records in order. Records with empty text are skipped.
// Clustering is always fuzzy, whatever fuzzy_match says.
func (e *Engine) Cluster(records []models.ScanRecord) []Group {
	m := similarity.NewMatcher(e.matcher.Threshold, true)
	keys := baseline.NewRegistry()
	var groups []Group
	pos := make(map[string]int)

	for _, r := range records {
		if r.Text == "" {
			continue
		}
		key, ok := m.Match(r.Text, keys)
		if !ok {
			key = r.Text
			keys.Add(key)
			pos[key] = len(groups)
			groups = append(groups, Group{Key: key})
		}
		i := pos[key]
		groups[i].Records = append(groups[i].Records, r)
	}
	return groups
}
