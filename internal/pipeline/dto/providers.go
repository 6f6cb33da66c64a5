package dto

// AlphaVantageNewsResponse is the NEWS_SENTIMENT payload.
type AlphaVantageNewsResponse struct {
	Items       string                 `json:"items"`
	Feed        []AlphaVantageNewsItem `json:"feed"`
	Information string                 `json:"Information"`
	Note        string                 `json:"Note"`
	ErrorMsg    string                 `json:"Error Message"`
}

// AlphaVantageNewsItem is one article.
type AlphaVantageNewsItem struct {
	Title                 string                        `json:"title"`
	URL                   string                        `json:"url"`
	TimePublished         string                        `json:"time_published"`
	Summary               string                        `json:"summary"`
	Source                string                        `json:"source"`
	OverallSentimentLabel string                        `json:"overall_sentiment_label"`
	TickerSentiment       []AlphaVantageTickerSentiment `json:"ticker_sentiment"`
}

// AlphaVantageTickerSentiment carries per-ticker scores. The API encodes the
// numbers as strings.
type AlphaVantageTickerSentiment struct {
	Ticker               string `json:"ticker"`
	RelevanceScore       string `json:"relevance_score"`
	TickerSentimentScore string `json:"ticker_sentiment_score"`
	TickerSentimentLabel string `json:"ticker_sentiment_label"`
}

// TwitterTweetsResponse is the v2 user tweets payload.
type TwitterTweetsResponse struct {
	Data   []TwitterTweet `json:"data"`
	Errors []TwitterError `json:"errors"`
	Meta   TwitterMeta    `json:"meta"`
}

// TwitterTweet is one post.
type TwitterTweet struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

// TwitterError is an API level error entry.
type TwitterError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// TwitterMeta holds paging info.
type TwitterMeta struct {
	ResultCount int `json:"result_count"`
}
