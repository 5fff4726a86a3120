package sqlite

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

const (
	defaultFileName = "emails.db"
	homeDirName     = ".vibe-trading"
	exeDataDir      = "data"
)

// PathOptions controls how candidate database paths are computed.
type PathOptions struct {
	Primary          string
	Fallbacks        []string
	DisableFallbacks bool

	Executable  func() (string, error)
	Getwd       func() (string, error)
	UserHomeDir func() (string, error)
}

// CandidatePaths returns absolute database paths in priority order: the
// primary first, then explicit fallbacks or the built-in ones. Paths that
// resolve to the same file are kept once.
func CandidatePaths(opts PathOptions) []string {
	if opts.Executable == nil {
		opts.Executable = os.Executable
	}
	if opts.Getwd == nil {
		opts.Getwd = os.Getwd
	}
	if opts.UserHomeDir == nil {
		opts.UserHomeDir = os.UserHomeDir
	}

	primary := opts.Primary
	if primary == "" {
		primary = defaultFileName
	}
	raw := []string{primary}

	switch {
	case opts.DisableFallbacks:
	case len(opts.Fallbacks) > 0:
		raw = append(raw, opts.Fallbacks...)
	default:
		if exe, err := opts.Executable(); err == nil {
			raw = append(raw, filepath.Join(filepath.Dir(exe), exeDataDir, defaultFileName))
		}
		if wd, err := opts.Getwd(); err == nil {
			raw = append(raw, filepath.Join(wd, defaultFileName))
		}
		if home, err := opts.UserHomeDir(); err == nil {
			raw = append(raw, filepath.Join(home, homeDirName, defaultFileName))
		}
	}

	seen := make(map[string]struct{}, len(raw))
	paths := make([]string, 0, len(raw))
	for _, p := range raw {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		if _, dup := seen[abs]; dup {
			continue
		}
		seen[abs] = struct{}{}
		paths = append(paths, abs)
	}
	return paths
}

// NewLocations builds one repository per path. The first is named primary,
// the rest fallback.
func NewLocations(
	paths []string,
	fsys afero.Fs,
	connTimeout time.Duration,
	logger zerolog.Logger,
) []*SubscriberRepository {
	repos := make([]*SubscriberRepository, 0, len(paths))
	for i, p := range paths {
		role := "fallback"
		if i == 0 {
			role = "primary"
		}
		repos = append(repos, NewSubscriberRepository(role+":"+p, p, fsys, connTimeout, logger))
	}
	return repos
}
