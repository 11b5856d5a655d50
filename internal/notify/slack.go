// Package notify posts briefings to Slack.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/slack-go/slack"
)

// SlackNotifier posts the analysis text to a channel. A zero-token notifier
// is valid and reports itself unconfigured.
type SlackNotifier struct {
	client  *slack.Client
	channel string
	logger  *slog.Logger
}

// NewSlack builds a notifier. Extra options are used by tests to point the
// client at a fake API server.
func NewSlack(token, channel string, logger *slog.Logger, opts ...slack.Option) *SlackNotifier {
	n := &SlackNotifier{channel: channel, logger: logger}
	if token != "" {
		n.client = slack.New(token, opts...)
	}
	return n
}

// Configured reports whether a token and channel are present.
func (n *SlackNotifier) Configured() bool {
	return n.client != nil && n.channel != ""
}

// SendBriefing posts the analysis wrapped in a dated header and code fence.
func (n *SlackNotifier) SendBriefing(ctx context.Context, analysis string, now time.Time) error {
	if !n.Configured() {
		return fmt.Errorf("notify: slack not configured")
	}

	text := fmt.Sprintf("*Market Research Report - %s*\n\n```%s```", now.Format("January 2, 2006"), analysis)
	_, ts, err := n.client.PostMessageContext(ctx, n.channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionEnableLinkUnfurl(),
	)
	if err != nil {
		return fmt.Errorf("notify: slack post: %w", err)
	}
	n.logger.Info("notify: slack message sent", "channel", n.channel, "ts", ts)
	return nil
}
