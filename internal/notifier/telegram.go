package notifier

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/Nazarious-ucu/vibe-trading-launch/internal/metrics"
)

const (
	defaultAPIURL  = "https://api.telegram.org"
	defaultTimeout = 10 * time.Second
	retryBase      = 200 * time.Millisecond
	maxRetries     = 2

	resultSent    = "sent"
	resultFailed  = "failed"
	resultSkipped = "skipped"
)

type Options struct {
	APIURL  string
	Token   string
	ChatID  string
	Timeout time.Duration
}

// Telegram posts plain-text messages to one chat through the Bot API.
type Telegram struct {
	client  *http.Client
	opts    Options
	backoff time.Duration
	logger  zerolog.Logger
	m       *metrics.Metrics
	wg      sync.WaitGroup
}

func NewTelegram(opts Options, transport http.RoundTripper, logger zerolog.Logger, m *metrics.Metrics) *Telegram {
	if opts.APIURL == "" {
		opts.APIURL = defaultAPIURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &Telegram{
		client:  &http.Client{Transport: transport, Timeout: opts.Timeout},
		opts:    opts,
		backoff: retryBase,
		logger:  logger.With().Str("component", "TelegramNotifier").Logger(),
		m:       m,
	}
}

// Enabled is false when the bot token or chat id is missing.
func (t *Telegram) Enabled() bool {
	return t.opts.Token != "" && t.opts.ChatID != ""
}

// Notify sends text in the background. Failures are logged and never returned.
func (t *Telegram) Notify(text string) {
	if !t.Enabled() {
		t.logger.Warn().Msg("telegram credentials not configured; skipping notification")
		t.m.RecordNotification(resultSkipped)
		return
	}

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), t.opts.Timeout*(maxRetries+1))
		defer cancel()
		if err := t.Send(ctx, text); err != nil {
			t.logger.Error().Err(err).Msg("failed to send telegram message")
		}
	}()
}

// Send posts text synchronously, retrying transport failures and 5xx/429 answers.
func (t *Telegram) Send(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(t.opts.APIURL, "/"), t.opts.Token)
	form := url.Values{"chat_id": {t.opts.ChatID}, "text": {text}}

	backoff := retry.WithMaxRetries(maxRetries, retry.NewExponential(t.backoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		return t.post(ctx, endpoint, form)
	})
	if err != nil {
		t.m.RecordNotification(resultFailed)
		t.m.TechnicalErrors.WithLabelValues("notification_failed", "low").Inc()
		return err
	}

	t.m.RecordNotification(resultSent)
	t.logger.Debug().Msg("sent telegram message successfully")
	return nil
}

func (t *Telegram) post(ctx context.Context, endpoint string, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return retry.RetryableError(fmt.Errorf("telegram request: %w", err))
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests:
		return retry.RetryableError(fmt.Errorf("telegram responded %d", resp.StatusCode))
	case resp.StatusCode >= http.StatusBadRequest:
		return fmt.Errorf("telegram responded %d", resp.StatusCode)
	}
	return nil
}

// Wait blocks until in-flight notifications finish or ctx is done.
func (t *Telegram) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
