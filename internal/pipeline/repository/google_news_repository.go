package repository

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/mauidude/go-readability"
	"github.com/mmcdole/gofeed"

	"golang-market-signal/internal/pipeline/config"
	"golang-market-signal/internal/pipeline/dto"
	"golang-market-signal/pkg/logger"
)

type googleNewsRepository struct {
	cfg    *config.Config
	log    *logger.Logger
	parser *gofeed.Parser
	client *resty.Client
}

// NewGoogleNewsRepository creates a NewsRepository backed by the Google News
// RSS search feed. Items carry no relevance tags.
func NewGoogleNewsRepository(cfg *config.Config, log *logger.Logger) NewsRepository {
	return &googleNewsRepository{
		cfg:    cfg,
		log:    log,
		parser: gofeed.NewParser(),
		client: resty.New().
			SetTimeout(15*time.Second).
			SetHeader("User-Agent", "Mozilla/5.0 (compatible; signal-bot/1.0)"),
	}
}

func (r *googleNewsRepository) feedURL(symbol string) string {
	q := url.Values{}
	q.Set("q", symbol+" stock")
	q.Set("hl", r.cfg.GoogleNews.Language)
	q.Set("gl", r.cfg.GoogleNews.Region)
	q.Set("ceid", r.cfg.GoogleNews.Region+":"+strings.Split(r.cfg.GoogleNews.Language, "-")[0])
	return r.cfg.GoogleNews.BaseURL + "?" + q.Encode()
}

func (r *googleNewsRepository) FetchNews(ctx context.Context, symbol string) ([]dto.ContentItem, error) {
	feedURL := r.feedURL(symbol)
	feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rss feed: %w", err)
	}

	limit := r.cfg.News.Limit
	items := make([]dto.ContentItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		if limit > 0 && len(items) >= limit {
			break
		}
		item := dto.ContentItem{
			Title: it.Title,
			Body:  htmlToText(it.Description),
			URL:   it.Link,
		}
		if it.PublishedParsed != nil {
			item.PublishedAt = it.PublishedParsed
		}
		if it.Author != nil {
			item.Source = it.Author.Name
		}
		if r.cfg.GoogleNews.FetchContent && it.Link != "" {
			content, err := r.fetchContent(ctx, it.Link)
			if err != nil {
				r.log.WarnContext(ctx, "Failed to fetch article content",
					logger.StringField("url", it.Link),
					logger.ErrorField(err),
				)
			} else if content != "" {
				item.Body = content
			}
		}
		items = append(items, item)
	}

	r.log.DebugContext(ctx, "Fetched google news",
		logger.StringField("symbol", symbol),
		logger.IntField("count", len(items)),
	)
	return items, nil
}

func (r *googleNewsRepository) fetchContent(ctx context.Context, link string) (string, error) {
	resp, err := r.client.R().SetContext(ctx).Get(link)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("failed to fetch news content, status code: %d", resp.StatusCode())
	}

	doc, err := readability.NewDocument(resp.String())
	if err != nil {
		return "", fmt.Errorf("failed to parse news content: %w", err)
	}
	content := htmlToText(doc.Content())
	if limit := r.cfg.GoogleNews.MaxContentLength; limit > 0 {
		content = truncateRunes(content, limit)
	}
	return content, nil
}

// htmlToText strips markup and collapses whitespace.
func htmlToText(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
