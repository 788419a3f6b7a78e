// Package gold merges the silver snapshot into the curated per-movie view.
// Aggregation is pure: the same snapshot and precedence always produce the
// same records, sorted by movie key with sorted source sets.
package gold

import (
	"sort"
	"strings"

	"cinelake/internal/lake"
)

// Aggregate merges silver records per movie key. For every field the value
// comes from the highest-precedence provider that supplies a non-empty
// one; canonical title and year resolve the same way. When both box-office
// gross figures survive the merge their sum is emitted as
// total_box_office_gross.
func Aggregate(records []lake.SilverRecord, precedence []string) []lake.GoldRecord {
	ranker := newRanker(precedence)

	groups := map[string][]lake.SilverRecord{}
	for _, record := range records {
		groups[record.MovieKey] = append(groups[record.MovieKey], record)
	}

	merged := make([]lake.GoldRecord, 0, len(groups))
	for key, group := range groups {
		merged = append(merged, mergeGroup(key, group, ranker))
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].MovieKey < merged[j].MovieKey })
	return merged
}

func mergeGroup(key string, group []lake.SilverRecord, ranker ranker) lake.GoldRecord {
	// Highest precedence first; ties cannot occur since silver holds at
	// most one record per (movie_key, provider).
	sort.Slice(group, func(i, j int) bool {
		return ranker.less(group[i].Provider, group[j].Provider)
	})

	record := lake.GoldRecord{
		MovieKey: key,
		Title:    group[0].Title,
		Year:     group[0].Year,
		Fields:   map[string]any{},
	}

	sources := make([]string, 0, len(group))
	for _, member := range group {
		sources = append(sources, member.Provider)
		if record.Title == "" && member.Title != "" {
			record.Title = member.Title
			record.Year = member.Year
		}
		for name, value := range member.Fields {
			if _, taken := record.Fields[name]; taken {
				continue
			}
			if empty(value) {
				continue
			}
			record.Fields[name] = value
		}
	}
	sort.Strings(sources)
	record.Sources = sources

	addTotalGross(record.Fields)
	return record
}

// addTotalGross derives the combined gross KPI when both components merged.
func addTotalGross(fields map[string]any) {
	domestic, okD := numeric(fields["domestic_box_office_gross"])
	international, okI := numeric(fields["international_box_office_gross"])
	if okD && okI {
		fields["total_box_office_gross"] = domestic + international
	}
}

func numeric(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

func empty(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// ranker orders providers by configured precedence; providers absent from
// the configuration follow the ranked ones in lexical order.
type ranker struct {
	rank map[string]int
}

func newRanker(precedence []string) ranker {
	rank := make(map[string]int, len(precedence))
	for i, provider := range precedence {
		provider = strings.ToLower(strings.TrimSpace(provider))
		if provider == "" {
			continue
		}
		if _, seen := rank[provider]; !seen {
			rank[provider] = i
		}
	}
	return ranker{rank: rank}
}

func (r ranker) less(a, b string) bool {
	rankA, okA := r.rank[strings.ToLower(a)]
	rankB, okB := r.rank[strings.ToLower(b)]
	switch {
	case okA && okB:
		return rankA < rankB
	case okA:
		return true
	case okB:
		return false
	default:
		return a < b
	}
}
