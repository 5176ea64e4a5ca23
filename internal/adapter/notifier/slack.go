package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hive-corporation/f2b-notifier/internal/core/domain"
	"github.com/hive-corporation/f2b-notifier/internal/logger"
)

const slackWebhookBase = "https://hooks.slack.com/services/"

// SlackWebhookNotifier posts plain-text messages to a Slack incoming webhook.
type SlackWebhookNotifier struct {
	baseURL    string
	channel    string
	username   string
	iconEmoji  string
	httpClient *http.Client
}

type Option func(*SlackWebhookNotifier)

// WithIconEmoji sets the icon shown next to the sender name (ex: ":rotating_light:").
func WithIconEmoji(emoji string) Option {
	return func(s *SlackWebhookNotifier) {
		s.iconEmoji = emoji
	}
}

// WithHTTPClient replaces the default client, whose timeout is the one given to the constructor.
func WithHTTPClient(c *http.Client) Option {
	return func(s *SlackWebhookNotifier) {
		s.httpClient = c
	}
}

func NewSlackWebhookNotifier(baseURL, channel, username string, timeout time.Duration, opts ...Option) *SlackWebhookNotifier {
	if baseURL == "" {
		baseURL = slackWebhookBase
	}
	s := &SlackWebhookNotifier{
		baseURL:  baseURL,
		channel:  channel,
		username: username,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WebhookURL joins the configured base with the caller's webhook path.
func (s *SlackWebhookNotifier) WebhookURL(webhookPath string) string {
	return strings.TrimSuffix(s.baseURL, "/") + "/" + strings.TrimPrefix(webhookPath, "/")
}

// Notify sends text once. Errors are reported in the Delivery, never retried.
func (s *SlackWebhookNotifier) Notify(ctx context.Context, webhookPath, text string) domain.Delivery {
	payload := SlackMessage{
		Channel:   s.channel,
		Username:  s.username,
		IconEmoji: s.iconEmoji,
		Text:      text,
	}

	status, err := s.sendMessage(ctx, webhookPath, payload)
	if err != nil {
		return domain.Delivery{Outcome: domain.Failed, StatusCode: status, Err: err}
	}

	logger.Debug("✅ Slack accepted message (status %d)", status)
	return domain.Delivery{Outcome: domain.Sent, StatusCode: status}
}

// Send message to Slack
func (s *SlackWebhookNotifier) sendMessage(ctx context.Context, webhookPath string, msg SlackMessage) (int, error) {
	jsonData, err := json.Marshal(msg)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal Slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.WebhookURL(webhookPath), bytes.NewBuffer(jsonData))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", redact(err, webhookPath))
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to send request: %w", redact(err, webhookPath))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	return resp.StatusCode, nil
}

// StatusError is returned when the webhook answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("slack webhook returned status %s", e.Status)
}

// redactedError keeps the webhook path, which is a credential, out of logs.
type redactedError struct {
	err    error
	secret string
}

func redact(err error, webhookPath string) error {
	return &redactedError{err: err, secret: strings.Trim(webhookPath, "/")}
}

func (e *redactedError) Error() string {
	msg := e.err.Error()
	if e.secret == "" {
		return msg
	}
	return strings.ReplaceAll(msg, e.secret, "<redacted>")
}

func (e *redactedError) Unwrap() error {
	return e.err
}

// Slack webhook payload

type SlackMessage struct {
	Channel   string `json:"channel,omitempty"`
	Username  string `json:"username,omitempty"`
	IconEmoji string `json:"icon_emoji,omitempty"`
	Text      string `json:"text"`
}
