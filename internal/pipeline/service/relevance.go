package service

import (
	"sort"

	"golang-market-signal/internal/pipeline/dto"
)

// FilterByRelevance keeps the k items most relevant to symbol, highest first.
// Items without a tag for symbol rank as 0. Ties keep provider order.
func FilterByRelevance(items []dto.ContentItem, symbol string, k int) []dto.ContentItem {
	if len(items) == 0 || k <= 0 {
		return []dto.ContentItem{}
	}

	ranked := make([]dto.ContentItem, len(items))
	copy(ranked, items)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RelevanceFor(symbol) > ranked[j].RelevanceFor(symbol)
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
