package line

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const pushPath = "/v2/bot/message/push"

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type pushRequest struct {
	To       string        `json:"to"`
	Messages []textMessage `json:"messages"`
}

// Client pushes text messages to a single LINE user or group.
type Client struct {
	http *resty.Client
	to   string
}

// NewClient creates a LINE Messaging API push client.
func NewClient(baseURL, channelAccessToken, to string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetAuthToken(channelAccessToken).
			SetTimeout(10 * time.Second),
		to: to,
	}
}

// SendMessage pushes text to the configured recipient.
func (c *Client) SendMessage(text string) error {
	resp, err := c.http.R().
		SetBody(pushRequest{
			To:       c.to,
			Messages: []textMessage{{Type: "text", Text: text}},
		}).
		Post(pushPath)
	if err != nil {
		return fmt.Errorf("failed to push line message: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("line push returned status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
