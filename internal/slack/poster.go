package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const defaultPostMessageURL = "https://slack.com/api/chat.postMessage"

const (
	defaultAttempts = 3
	defaultBackoff  = 500 * time.Millisecond
)

// errPermanent marks a Slack API error that retrying cannot fix.
var errPermanent = errors.New("slack rejected message")

// Poster sends chat replies through chat.postMessage. Sends are rate limited
// across all callers and failed sends are retried with exponential backoff.
type Poster struct {
	token    string
	client   *http.Client
	logger   *slog.Logger
	apiURL   string
	limiter  *rate.Limiter
	attempts int
	backoff  time.Duration
}

func NewPoster(token string, logger *slog.Logger) *Poster {
	return &Poster{
		token:    token,
		client:   &http.Client{Timeout: 10 * time.Second},
		apiURL:   defaultPostMessageURL,
		logger:   logger,
		limiter:  rate.NewLimiter(rate.Limit(1), 3),
		attempts: defaultAttempts,
		backoff:  defaultBackoff,
	}
}

// PostMessage posts text to channel, threaded under threadTS when set. Text
// longer than one Slack message is sent as several messages in order.
func (p *Poster) PostMessage(ctx context.Context, channel, threadTS, text string) error {
	for _, chunk := range Split(text, MaxMessageLen) {
		if err := p.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
		if err := p.postWithRetry(ctx, channel, threadTS, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (p *Poster) postWithRetry(ctx context.Context, channel, threadTS, text string) error {
	var err error
	wait := p.backoff
	for attempt := 1; attempt <= p.attempts; attempt++ {
		var ts string
		ts, err = p.post(ctx, channel, threadTS, text)
		if err == nil {
			p.logger.Debug("posted to slack", "channel", channel, "ts", ts)
			return nil
		}
		if errors.Is(err, errPermanent) || attempt == p.attempts {
			break
		}

		p.logger.Warn("slack post failed, retrying", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return fmt.Errorf("slack post: %w", ctx.Err())
		case <-time.After(wait):
		}
		wait *= 2
	}
	return err
}

func (p *Poster) post(ctx context.Context, channel, threadTS, text string) (string, error) {
	payload := map[string]any{
		"channel": channel,
		"text":    text,
	}
	if threadTS != "" {
		payload["thread_ts"] = threadTS
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("slack post: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", fmt.Errorf("slack post: status %d", resp.StatusCode)
	}

	var slackResp struct {
		OK    bool   `json:"ok"`
		TS    string `json:"ts"`
		Error string `json:"error,omitempty"`
	}
	if err := json.Unmarshal(respBody, &slackResp); err != nil {
		return "", fmt.Errorf("parse slack response: %w", err)
	}
	if !slackResp.OK {
		if slackResp.Error == "ratelimited" {
			return "", fmt.Errorf("slack error: %s", slackResp.Error)
		}
		return "", fmt.Errorf("%w: %s", errPermanent, slackResp.Error)
	}
	return slackResp.TS, nil
}
