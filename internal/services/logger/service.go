package logger

import (
	"bytes"
	"io"
	"net/http"
	"regexp"
	"time"

	"go.uber.org/zap"
)

const bodySnippetLimit = 512

var botTokenPath = regexp.MustCompile(`/bot[^/]+/`)

// RoundTripper logs every outbound request to a zap logger. Bot tokens in
// the URL path are masked.
type RoundTripper struct {
	Logger *zap.Logger
	Proxy  http.RoundTripper
}

func NewRoundTripper(logger *zap.Logger) *RoundTripper {
	return &RoundTripper{
		Logger: logger,
		Proxy:  http.DefaultTransport,
	}
}

func (l *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := l.Proxy.RoundTrip(req)
	duration := time.Since(start)
	url := redactURL(req.URL.String())

	if err != nil {
		l.Logger.Error("HTTP request failed",
			zap.String("method", req.Method),
			zap.String("url", url),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		l.Logger.Error("Failed to read response body",
			zap.String("method", req.Method),
			zap.String("url", url),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	resp.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

	snippet := bodyBytes
	if len(snippet) > bodySnippetLimit {
		snippet = snippet[:bodySnippetLimit]
	}
	l.Logger.Info("HTTP request completed",
		zap.String("method", req.Method),
		zap.String("url", url),
		zap.ByteString("body_snipped", snippet),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	return resp, nil
}

func redactURL(raw string) string {
	return botTokenPath.ReplaceAllString(raw, "/bot***/")
}
