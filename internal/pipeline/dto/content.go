package dto

import "time"

// ContentItem is one news article or social post handed to the model.
type ContentItem struct {
	Title       string             `json:"title,omitempty"`
	Body        string             `json:"body"`
	Source      string             `json:"source,omitempty"`
	URL         string             `json:"url,omitempty"`
	Sentiment   string             `json:"sentiment,omitempty"`
	PublishedAt *time.Time         `json:"published_at,omitempty"`
	Relevance   map[string]float64 `json:"-"`
}

// RelevanceFor returns the provider-supplied relevance tag for symbol, or 0.
func (c ContentItem) RelevanceFor(symbol string) float64 {
	if c.Relevance == nil {
		return 0
	}
	return c.Relevance[symbol]
}

// PriceBar is one daily close.
type PriceBar struct {
	Date  time.Time
	Close float64
}
