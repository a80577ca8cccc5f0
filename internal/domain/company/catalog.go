package company

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"policylens/services/chat-api/internal/domain/metasummary"
)

// SortKey selects a company list ordering.
type SortKey string

const (
	SortByName    SortKey = "name"
	SortByRisk    SortKey = "risk"
	SortByUpdated SortKey = "updated"
)

// ParseSortKey maps a query parameter to a SortKey, defaulting to name.
func ParseSortKey(raw string) SortKey {
	switch SortKey(strings.ToLower(strings.TrimSpace(raw))) {
	case SortByRisk:
		return SortByRisk
	case SortByUpdated:
		return SortByUpdated
	default:
		return SortByName
	}
}

// Filter returns the subsequence of companies whose name, description, or
// industry contains the term, case-insensitively. An empty term matches
// everything. Pure function: the input slice is not modified.
func Filter(companies []Company, term string) []Company {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		out := make([]Company, len(companies))
		copy(out, companies)
		return out
	}

	out := make([]Company, 0, len(companies))
	for _, c := range companies {
		if strings.Contains(strings.ToLower(c.Name), term) ||
			strings.Contains(strings.ToLower(c.Description), term) ||
			strings.Contains(strings.ToLower(c.Industry), term) {
			out = append(out, c)
		}
	}
	return out
}

// Sort orders companies in place by the given key. Name sorting uses a
// locale-aware case-insensitive collation; risk sorting is non-increasing
// by verdict severity rank; updated sorting is most recent first.
func Sort(companies []Company, key SortKey) {
	switch key {
	case SortByRisk:
		sort.SliceStable(companies, func(i, j int) bool {
			return metasummary.SeverityRank(metasummary.Verdict(companies[i].Verdict)) >
				metasummary.SeverityRank(metasummary.Verdict(companies[j].Verdict))
		})
	case SortByUpdated:
		sort.SliceStable(companies, func(i, j int) bool {
			ti, tj := companies[i].UpdatedAt, companies[j].UpdatedAt
			switch {
			case ti == nil:
				return false
			case tj == nil:
				return true
			default:
				return ti.After(*tj)
			}
		})
	default:
		collator := collate.New(language.English, collate.IgnoreCase)
		sort.SliceStable(companies, func(i, j int) bool {
			return collator.CompareString(companies[i].Name, companies[j].Name) < 0
		})
	}
}
