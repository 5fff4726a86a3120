//go:build integration
// +build integration

package integration

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/vibe-trading-launch/internal/app"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/config"
)

var (
	testServerURL string
	srvContainer  *app.ServiceContainer
	telegram      *telegramRecorder
)

// telegramRecorder stands in for the Bot API and keeps every message text it receives.
type telegramRecorder struct {
	mu       sync.Mutex
	messages []string
}

func (r *telegramRecorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if err := req.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	r.mu.Lock()
	r.messages = append(r.messages, req.PostForm.Get("text"))
	r.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"ok":true}`))
}

func (r *telegramRecorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

func TestMain(m *testing.M) {
	fmt.Println("Starting integration tests...")

	dir, err := os.MkdirTemp("", "vibe-integration")
	if err != nil {
		log.Panicf("failed to create temp dir: %v", err)
	}

	telegram = &telegramRecorder{}
	tgServer := httptest.NewServer(telegram)

	cfg := config.Config{
		Server: config.Server{Host: "127.0.0.1", Port: "0", ReadTimeout: 5},
		DB: config.Db{
			Path:          filepath.Join(dir, "primary", "emails.db"),
			FallbackPaths: []string{filepath.Join(dir, "fallback", "emails.db")},
			ConnTimeout:   2 * time.Second,
		},
		Admin: config.Admin{Username: "admin", Password: "secret"},
		Telegram: config.Telegram{
			APIURL:   tgServer.URL,
			BotToken: "test-token",
			ChatID:   "42",
			Timeout:  2 * time.Second,
		},
		Consolidation: config.Consolidation{Enabled: true},
		Log:           config.Log{HTTPPath: filepath.Join(dir, "http.log")},
	}

	application := app.New(cfg, zerolog.New(os.Stdout).With().Timestamp().Logger())
	srvContainer, err = application.Build(context.Background())
	if err != nil {
		log.Panicf("failed to build application: %v", err)
	}

	testServer := httptest.NewServer(srvContainer.Router)
	testServerURL = testServer.URL

	code := m.Run()

	testServer.Close()
	if err := application.Stop(srvContainer); err != nil {
		log.Printf("failed to shutdown application: %v", err)
	}
	tgServer.Close()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}
