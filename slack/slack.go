package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client posts messages to an incoming webhook.
type Client struct {
	webhookURL string
	username   string
	httpClient doer
}

func NewClient(webhookURL string, httpClient doer) *Client {
	return &Client{
		webhookURL: webhookURL,
		username:   "MealCraft",
		httpClient: httpClient,
	}
}

type block struct {
	Type string     `json:"type"`
	Text *blockText `json:"text,omitempty"`
}

type blockText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type payload struct {
	Channel  string  `json:"channel,omitempty"`
	Username string  `json:"username,omitempty"`
	Text     string  `json:"text"`
	Blocks   []block `json:"blocks,omitempty"`
}

func (c *Client) PostMessage(ctx context.Context, channel string, message string) error {
	return c.post(ctx, payload{Channel: channel, Username: c.username, Text: message})
}

// PostSnippet posts body as a preformatted block under a bold title. The
// plain text fallback carries the whole body for notifications.
func (c *Client) PostSnippet(ctx context.Context, channel, title, body string) error {
	body = strings.TrimRight(body, "\n")
	return c.post(ctx, payload{
		Channel:  channel,
		Username: c.username,
		Text:     title + "\n" + body,
		Blocks: []block{
			{Type: "header", Text: &blockText{Type: "plain_text", Text: title}},
			{Type: "section", Text: &blockText{Type: "mrkdwn", Text: "```" + body + "```"}},
		},
	})
}

func (c *Client) post(ctx context.Context, p payload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(data))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to post message: %s", resp.Status)
	}

	return nil
}
