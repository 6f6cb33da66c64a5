package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"golang-market-signal/internal/pipeline/config"
	"golang-market-signal/internal/pipeline/dto"
	"golang-market-signal/pkg/logger"
)

// SocialRepository fetches recent posts of one account.
type SocialRepository interface {
	FetchPosts(ctx context.Context, accountID string) ([]dto.ContentItem, error)
}

type twitterRepository struct {
	cfg    *config.Config
	log    *logger.Logger
	client *resty.Client
}

// NewTwitterRepository creates a SocialRepository backed by the X/Twitter v2 API.
func NewTwitterRepository(cfg *config.Config, log *logger.Logger) SocialRepository {
	return &twitterRepository{
		cfg: cfg,
		log: log,
		client: resty.New().
			SetBaseURL(cfg.Twitter.BaseURL).
			SetAuthToken(cfg.Twitter.BearerToken).
			SetTimeout(15 * time.Second),
	}
}

func (r *twitterRepository) FetchPosts(ctx context.Context, accountID string) ([]dto.ContentItem, error) {
	maxResults := r.cfg.Twitter.MaxResults
	// The endpoint rejects values below 5.
	if maxResults < 5 {
		maxResults = 5
	}

	var body dto.TwitterTweetsResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetPathParam("id", accountID).
		SetQueryParams(map[string]string{
			"max_results":  strconv.Itoa(maxResults),
			"exclude":      "retweets,replies",
			"tweet.fields": "created_at",
		}).
		SetResult(&body).
		Get("/2/users/{id}/tweets")
	if err != nil {
		return nil, fmt.Errorf("failed to request tweets: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("twitter returned status %d: %s", resp.StatusCode(), resp.String())
	}
	if len(body.Data) == 0 && len(body.Errors) > 0 {
		return nil, fmt.Errorf("twitter: %s: %s", body.Errors[0].Title, body.Errors[0].Detail)
	}

	items := make([]dto.ContentItem, 0, len(body.Data))
	for _, tw := range body.Data {
		item := dto.ContentItem{
			Body: tw.Text,
			URL:  "https://x.com/i/web/status/" + tw.ID,
		}
		if t, err := time.Parse(time.RFC3339, tw.CreatedAt); err == nil {
			item.PublishedAt = &t
		}
		items = append(items, item)
	}

	r.log.DebugContext(ctx, "Fetched tweets",
		logger.StringField("account_id", accountID),
		logger.IntField("count", len(items)),
	)
	return items, nil
}
