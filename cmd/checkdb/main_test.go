package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nazarious-ucu/vibe-trading-launch/internal/config"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/repository/sqlite"
)

func seedFile(t *testing.T, path, email string) {
	t.Helper()
	ctx := context.Background()
	repo := sqlite.NewSubscriberRepository("seed", path, afero.NewOsFs(), time.Second, zerolog.Nop())
	require.NoError(t, repo.Prepare(ctx))
	require.NoError(t, repo.Insert(ctx, email, time.Now()))
	require.NoError(t, repo.Close())
}

func TestRun_PrintsEveryLocation(t *testing.T) {
	dir := t.TempDir()
	primary := filepath.Join(dir, "primary", "emails.db")
	fallback := filepath.Join(dir, "fallback", "emails.db")
	seedFile(t, primary, "p@example.com")
	seedFile(t, fallback, "f@example.com")

	cfg := config.Config{DB: config.Db{
		Path:          primary,
		FallbackPaths: []string{fallback},
		ConnTimeout:   time.Second,
	}}

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, afero.NewOsFs(), zerolog.Nop(), &out))

	body := out.String()
	assert.Contains(t, body, "Emails stored (2):")
	assert.Contains(t, body, "p@example.com")
	assert.Contains(t, body, "primary:"+primary)
	assert.Contains(t, body, "f@example.com")
	assert.Contains(t, body, "fallback:"+fallback)
}

func TestRun_ListFailureIsReturned(t *testing.T) {
	dir := t.TempDir()
	primary := filepath.Join(dir, "emails.db")
	require.NoError(t, os.Mkdir(primary, 0o755))

	cfg := config.Config{DB: config.Db{
		Path:             primary,
		DisableFallbacks: true,
		ConnTimeout:      time.Second,
	}}

	var out bytes.Buffer
	err := run(context.Background(), cfg, afero.NewOsFs(), zerolog.Nop(), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list subscribers")
	assert.Empty(t, out.String())
}
