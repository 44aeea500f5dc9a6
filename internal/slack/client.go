// Package slack wraps the handful of Slack Web API calls needed to turn a
// message locator into an aggregated message view.
package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/k-ymmt/save-slack-to-inkdrop/internal/apperr"
	"github.com/k-ymmt/save-slack-to-inkdrop/internal/permalink"
)

const defaultBaseURL = "https://slack.com/api"

// Doer executes a single HTTP request. *http.Client satisfies it; tests
// substitute a fake.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// TokenFunc supplies the current bearer token, allowing rotation at runtime.
type TokenFunc func() string

// Client calls the Slack Web API through an injected Doer.
type Client struct {
	http    Doer
	baseURL string
	token   TokenFunc
}

// Option configures a Client.
type Option func(*Client)

// WithDoer sets the HTTP transport.
func WithDoer(d Doer) Option {
	return func(c *Client) { c.http = d }
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// NewClient creates a Client authenticated by token.
func NewClient(token TokenFunc, opts ...Option) *Client {
	c := &Client{
		http:    http.DefaultClient,
		baseURL: defaultBaseURL,
		token:   token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetMessage fetches the message at loc and aggregates author, channel, and
// permalink around it. The message fetch itself is the only hard failure:
// author and channel are looked up concurrently and degrade to absent on
// failure, as does the permalink. The permalink lookup uses the canonical
// timestamp, which for thread replies is the thread root's ts.
func (c *Client) GetMessage(ctx context.Context, loc permalink.Locator) (*Message, error) {
	params := url.Values{}
	params.Set("channel", loc.ChannelID)
	params.Set("ts", formatTS(loc.Timestamp))

	var out repliesResponse
	if err := c.get(ctx, "conversations.replies", params, &out); err != nil {
		return nil, err
	}
	if !out.OK || len(out.Messages) == 0 {
		return nil, fmt.Errorf("slack: message %s/%s: %w", loc.ChannelID, formatTS(loc.Timestamp), apperr.ErrNotFound)
	}

	first := out.Messages[0]
	if first.Text == "" || first.TS == "" {
		return nil, fmt.Errorf("slack: message has no text: %w", apperr.ErrNotFound)
	}

	canonical := first.TS
	if first.ThreadTS != "" {
		canonical = first.ThreadTS
	}
	ts, err := strconv.ParseFloat(canonical, 64)
	if err != nil {
		return nil, fmt.Errorf("slack: bad message ts %q: %w", canonical, apperr.ErrNotFound)
	}

	msg := &Message{Text: first.Text, Timestamp: ts}

	// Author and channel are independent of each other; fetch both at once.
	// Neither is required for the message to resolve.
	g, gctx := errgroup.WithContext(ctx)
	if first.User != "" {
		g.Go(func() error {
			if u, err := c.GetUser(gctx, first.User); err == nil {
				msg.Author = u
			}
			return nil
		})
	}
	g.Go(func() error {
		if ch, err := c.GetChannel(gctx, loc.ChannelID); err == nil {
			msg.Channel = ch
		}
		return nil
	})
	_ = g.Wait()

	if link, err := c.GetPermalink(ctx, loc.ChannelID, ts); err == nil {
		msg.Permalink = link
	}

	return msg, nil
}

// GetUser fetches a user profile. The display name falls back from the
// normalized display name to the normalized real name; empty strings count
// as absent.
func (c *Client) GetUser(ctx context.Context, userID string) (*User, error) {
	params := url.Values{}
	params.Set("user", userID)

	var out userResponse
	if err := c.get(ctx, "users.info", params, &out); err != nil {
		return nil, err
	}
	if !out.OK || out.User == nil || out.User.ID == "" {
		return nil, fmt.Errorf("slack: user %s: %w", userID, apperr.ErrNotFound)
	}

	name := out.User.Profile.DisplayNameNormalized
	if name == "" {
		name = out.User.Profile.RealNameNormalized
	}
	return &User{
		ID:          out.User.ID,
		DisplayName: name,
		AvatarURL:   out.User.Profile.Image24,
	}, nil
}

// GetChannel fetches channel info. Both id and name are required.
func (c *Client) GetChannel(ctx context.Context, channelID string) (*Channel, error) {
	params := url.Values{}
	params.Set("channel", channelID)

	var out channelResponse
	if err := c.get(ctx, "conversations.info", params, &out); err != nil {
		return nil, err
	}
	if !out.OK || out.Channel == nil || out.Channel.ID == "" || out.Channel.Name == "" {
		return nil, fmt.Errorf("slack: channel %s: %w", channelID, apperr.ErrNotFound)
	}
	return &Channel{ID: out.Channel.ID, Name: out.Channel.Name}, nil
}

// GetPermalink fetches a shareable permalink for the message at ts.
func (c *Client) GetPermalink(ctx context.Context, channelID string, ts float64) (string, error) {
	params := url.Values{}
	params.Set("channel", channelID)
	params.Set("message_ts", formatTS(ts))

	var out permalinkResponse
	if err := c.get(ctx, "chat.getPermalink", params, &out); err != nil {
		return "", err
	}
	if !out.OK || out.Permalink == "" {
		return "", fmt.Errorf("slack: permalink for %s/%s: %w", channelID, formatTS(ts), apperr.ErrUnavailable)
	}
	return out.Permalink, nil
}

func (c *Client) get(ctx context.Context, method string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+method+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("slack: %s: build request: %w", method, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("slack: %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack: %s: unexpected status %d", method, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("slack: %s: decode response: %w", method, err)
	}
	return nil
}

// formatTS renders a seconds timestamp in Slack's fixed-point wire form,
// e.g. 1700000000.123456.
func formatTS(ts float64) string {
	return strconv.FormatFloat(ts, 'f', 6, 64)
}
