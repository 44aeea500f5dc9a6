// Package permalink parses Slack message permalinks into channel/timestamp locators.
package permalink

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/k-ymmt/save-slack-to-inkdrop/internal/apperr"
)

var hostRe = regexp.MustCompile(`^[^.]+(\.[^.]+)*\.slack\.com$`)

// Locator identifies a single message: the channel it lives in and its
// timestamp in seconds with microsecond precision.
type Locator struct {
	ChannelID string
	Timestamp float64
}

// Parse validates a Slack message permalink of the form
// https://<team>.slack.com/archives/<channelID>/p<digits> and returns its
// locator. The p-suffix digits encode seconds multiplied by 1,000,000.
// Any malformed input yields an error wrapping apperr.ErrBadURL.
func Parse(raw string) (Locator, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Locator{}, fmt.Errorf("%w: %s", apperr.ErrBadURL, raw)
	}
	if u.Scheme != "https" {
		return Locator{}, fmt.Errorf("%w: scheme must be https", apperr.ErrBadURL)
	}
	if !hostRe.MatchString(u.Host) {
		return Locator{}, fmt.Errorf("%w: host %q is not a slack workspace", apperr.ErrBadURL, u.Host)
	}

	parts := strings.Split(u.Path, "/")
	if len(parts) != 4 || parts[1] != "archives" {
		return Locator{}, fmt.Errorf("%w: path is not an archives link", apperr.ErrBadURL)
	}
	channelID := parts[2]
	if channelID == "" {
		return Locator{}, fmt.Errorf("%w: missing channel id", apperr.ErrBadURL)
	}
	suffix := parts[3]
	if !strings.HasPrefix(suffix, "p") {
		return Locator{}, fmt.Errorf("%w: missing p-prefixed timestamp", apperr.ErrBadURL)
	}

	n, err := strconv.ParseInt(suffix[1:], 10, 64)
	if err != nil || n <= 0 {
		return Locator{}, fmt.Errorf("%w: bad timestamp %q", apperr.ErrBadURL, suffix)
	}

	return Locator{
		ChannelID: channelID,
		Timestamp: float64(n) / 1_000_000,
	}, nil
}
