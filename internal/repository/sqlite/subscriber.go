package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/Nazarious-ucu/vibe-trading-launch/internal/models"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const (
	driverName = "sqlite"
	timeLayout = "2006-01-02 15:04:05.000000"
	probeName  = ".vibe-write-probe-*"

	defaultConnTimeout = 5 * time.Second
)

var readLayouts = []string{
	timeLayout,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
}

// SubscriberRepository is one sqlite file acting as a storage location.
// The file and schema are created by Prepare only; reads of a missing file
// or table report nothing stored.
type SubscriberRepository struct {
	name        string
	path        string
	fs          afero.Fs
	connTimeout time.Duration
	logger      zerolog.Logger

	mu    sync.Mutex
	db    *sql.DB
	ready bool
}

func NewSubscriberRepository(
	name, path string,
	fsys afero.Fs,
	connTimeout time.Duration,
	logger zerolog.Logger,
) *SubscriberRepository {
	if connTimeout <= 0 {
		connTimeout = defaultConnTimeout
	}
	return &SubscriberRepository{
		name:        name,
		path:        path,
		fs:          fsys,
		connTimeout: connTimeout,
		logger:      logger.With().Str("component", "SQLiteLocation").Str("location", name).Logger(),
	}
}

func (r *SubscriberRepository) Name() string { return r.name }

func (r *SubscriberRepository) Path() string { return r.path }

// Prepare makes sure the directory is writable, the file exists and the
// schema is migrated. Concurrent callers are serialized.
func (r *SubscriberRepository) Prepare(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ready {
		return nil
	}

	dir := filepath.Dir(r.path)
	if err := r.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	if err := r.probeWritable(dir); err != nil {
		return err
	}

	db, err := r.openLocked(ctx)
	if err != nil {
		return err
	}

	sub, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}
	provider, err := goose.NewProvider(database.DialectSQLite3, db, sub)
	if err != nil {
		return fmt.Errorf("migration provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, res := range results {
		r.logger.Info().Str("migration", res.Source.Path).Dur("took", res.Duration).Msg("migration applied")
	}

	r.ready = true
	r.logger.Debug().Str("path", r.path).Msg("location prepared")
	return nil
}

func (r *SubscriberRepository) probeWritable(dir string) error {
	f, err := afero.TempFile(r.fs, dir, probeName)
	if err != nil {
		return fmt.Errorf("directory %s not writable: %w", dir, err)
	}
	name := f.Name()
	_ = f.Close()
	if err := r.fs.Remove(name); err != nil {
		r.logger.Warn().Err(err).Str("probe", name).Msg("failed to remove write probe")
	}
	return nil
}

func (r *SubscriberRepository) Find(ctx context.Context, email string) (models.Subscriber, bool, error) {
	db, ok, err := r.existing(ctx)
	if err != nil || !ok {
		return models.Subscriber{}, false, err
	}

	var (
		sub       models.Subscriber
		createdAt sql.NullString
	)
	err = db.QueryRowContext(ctx,
		`SELECT id, email, created_at FROM emails WHERE email = ?`, email,
	).Scan(&sub.ID, &sub.Email, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Subscriber{}, false, nil
	}
	if err != nil {
		return models.Subscriber{}, false, fmt.Errorf("find %s: %w", email, err)
	}
	sub.CreatedAt = parseTime(createdAt.String)
	return sub, true, nil
}

func (r *SubscriberRepository) Insert(ctx context.Context, email string, createdAt time.Time) error {
	if err := r.Prepare(ctx); err != nil {
		return err
	}
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO emails (email, created_at) VALUES (?, ?)`,
		email, createdAt.UTC().Format(timeLayout),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrDuplicateEmail
		}
		return fmt.Errorf("insert %s: %w", email, err)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return models.ErrDuplicateEmail
		}
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *SubscriberRepository) List(ctx context.Context) ([]models.Subscriber, error) {
	db, ok, err := r.existing(ctx)
	if err != nil || !ok {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, email, created_at FROM emails ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			r.logger.Error().Err(cerr).Msg("failed to close rows")
		}
	}()

	var subs []models.Subscriber
	for rows.Next() {
		var (
			sub       models.Subscriber
			createdAt sql.NullString
		)
		if err := rows.Scan(&sub.ID, &sub.Email, &createdAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		sub.CreatedAt = parseTime(createdAt.String)
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (r *SubscriberRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	r.ready = false
	return err
}

// existing returns a handle only when the file and the emails table are
// already there, so reads never create either.
func (r *SubscriberRepository) existing(ctx context.Context) (*sql.DB, bool, error) {
	ok, err := afero.Exists(r.fs, r.path)
	if err != nil {
		return nil, false, fmt.Errorf("stat %s: %w", r.path, err)
	}
	if !ok {
		return nil, false, nil
	}

	db, err := r.conn(ctx)
	if err != nil {
		return nil, false, err
	}

	var one int
	err = db.QueryRowContext(ctx,
		`SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = 'emails'`,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("schema lookup: %w", err)
	}
	return db, true, nil
}

func (r *SubscriberRepository) conn(ctx context.Context) (*sql.DB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.openLocked(ctx)
}

func (r *SubscriberRepository) openLocked(ctx context.Context) (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := sql.Open(driverName, r.dsn())
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", r.path, err)
	}
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, r.connTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", r.path, err)
	}

	r.db = db
	return db, nil
}

func (r *SubscriberRepository) dsn() string {
	return fmt.Sprintf("file:%s?mode=rwc&_pragma=busy_timeout(%d)",
		r.path, r.connTimeout.Milliseconds())
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

func parseTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range readLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
