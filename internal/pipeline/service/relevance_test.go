package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-market-signal/internal/pipeline/dto"
)

func itemsWithRelevance(symbol string, scores ...float64) []dto.ContentItem {
	items := make([]dto.ContentItem, len(scores))
	for i, s := range scores {
		items[i] = dto.ContentItem{
			Title:     string(rune('a' + i)),
			Relevance: map[string]float64{symbol: s},
		}
	}
	return items
}

func TestFilterByRelevance(t *testing.T) {
	items := itemsWithRelevance("TSLA", 0.9, 0.1, 0.5)

	got := FilterByRelevance(items, "TSLA", 2)

	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Title)
	assert.Equal(t, "c", got[1].Title)
}

func TestFilterByRelevance_StableOnTies(t *testing.T) {
	items := itemsWithRelevance("TSLA", 0.5, 0.7, 0.5, 0.5)

	got := FilterByRelevance(items, "TSLA", 10)

	require.Len(t, got, 4)
	assert.Equal(t, []string{"b", "a", "c", "d"}, titles(got))
}

func TestFilterByRelevance_MissingTagsDefaultToZero(t *testing.T) {
	items := []dto.ContentItem{
		{Title: "untagged"},
		{Title: "other", Relevance: map[string]float64{"AAPL": 0.99}},
		{Title: "tagged", Relevance: map[string]float64{"TSLA": 0.2}},
	}

	got := FilterByRelevance(items, "TSLA", 2)

	assert.Equal(t, []string{"tagged", "untagged"}, titles(got))
}

func TestFilterByRelevance_Edges(t *testing.T) {
	assert.Empty(t, FilterByRelevance(nil, "TSLA", 10))
	assert.Len(t, FilterByRelevance(itemsWithRelevance("TSLA", 0.1, 0.2), "TSLA", 10), 2)

	items := itemsWithRelevance("TSLA", 0.1, 0.2)
	_ = FilterByRelevance(items, "TSLA", 1)
	assert.Equal(t, "a", items[0].Title, "input must not be reordered")
}

func titles(items []dto.ContentItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}
