package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/Nazarious-ucu/vibe-trading-launch/internal/app"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/config"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/metrics"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/services/store"
)

const timeoutDuration = 30 * time.Second

// checkdb prints every stored subscriber from every storage location.
func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	cfg, err := config.NewConfig()
	if err != nil {
		log.Printf("failed to load configuration: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeoutDuration)
	defer cancel()

	l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel)
	if err := run(ctx, *cfg, afero.NewOsFs(), l, os.Stdout); err != nil {
		log.Printf("checkdb: %v", err)
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, fsys afero.Fs, l zerolog.Logger, out io.Writer) (err error) {
	m := metrics.NewMetrics("checkdb")
	st := store.New(app.BuildLocations(cfg, fsys, l, m), nil, l, m)
	defer func() {
		if cerr := st.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close: %w", cerr)
		}
	}()

	subs, err := st.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list subscribers: %w", err)
	}

	for _, loc := range st.Locations() {
		_, _ = fmt.Fprintf(out, "Location: %s\n", loc.Name())
	}
	_, _ = fmt.Fprintf(out, "Emails stored (%d):\n", len(subs))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tEMAIL\tCREATED AT\tORIGIN")
	for _, s := range subs {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.ID, s.Email, s.CreatedAt.Format(time.RFC3339), s.Origin)
	}
	return w.Flush()
}
