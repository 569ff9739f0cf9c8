// Package discovery expands user supplied files and folders into the ordered
// list of videos a batch converts.
package discovery

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"movieconv/internal/logging"
)

// Supported video extensions (lowercase, with leading dot).
var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".avi":  true,
	".mkv":  true,
	".webm": true,
	".flv":  true,
	".wmv":  true,
}

// Options tunes enumeration.
type Options struct {
	// SkipDirs names directories (matched case-insensitively by base name)
	// that are pruned while walking a folder.
	SkipDirs []string
	Logger   *slog.Logger
}

// IsVideo reports whether path has a supported video extension.
func IsVideo(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}

// Enumerate returns every supported video reachable from paths: folders are
// walked recursively, files are taken as given, and anything else is skipped.
// Results are absolute, deduplicated by resolved location, and in natural
// order. The only error is ctx cancellation.
func Enumerate(ctx context.Context, paths []string, opts Options) ([]string, error) {
	logger := logging.NewComponentLogger(opts.Logger, "discovery")
	e := &enumerator{
		logger: logger,
		skip:   opts.SkipDirs,
		seen:   make(map[string]struct{}),
		files:  []string{},
	}
	for _, raw := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := e.addRoot(ctx, raw); err != nil {
			return nil, err
		}
	}
	SortNatural(e.files)
	return e.files, nil
}

type enumerator struct {
	logger *slog.Logger
	skip   []string
	seen   map[string]struct{}
	files  []string
}

func (e *enumerator) addRoot(ctx context.Context, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	abs, err := filepath.Abs(raw)
	if err != nil {
		e.logger.Debug("input path skipped", logging.String("path", raw), logging.Error(err))
		return nil
	}
	info, err := os.Stat(abs)
	if err != nil {
		e.logger.Debug("input path skipped", logging.String("path", abs), logging.Error(err))
		return nil
	}
	switch {
	case info.IsDir():
		return e.walk(ctx, abs)
	case info.Mode().IsRegular() && IsVideo(abs):
		e.add(abs)
	default:
		e.logger.Debug("input path skipped", logging.String("path", abs), logging.String("reason", "not a supported video"))
	}
	return nil
}

func (e *enumerator) walk(ctx context.Context, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			e.logger.Warn("folder entry unreadable; skipping",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldEventType, "discovery_skip"),
			)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && e.skipped(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsVideo(path) {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			info, statErr := os.Stat(path)
			if statErr != nil || !info.Mode().IsRegular() {
				return nil
			}
		} else if !d.Type().IsRegular() {
			return nil
		}
		e.add(path)
		return nil
	})
}

func (e *enumerator) skipped(name string) bool {
	for _, skip := range e.skip {
		if strings.EqualFold(name, skip) {
			return true
		}
	}
	return false
}

func (e *enumerator) add(path string) {
	key := identity(path)
	if _, ok := e.seen[key]; ok {
		return
	}
	e.seen[key] = struct{}{}
	e.files = append(e.files, path)
}

// identity resolves symlinks so the same file reached through two inputs is
// only converted once.
func identity(path string) string {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		resolved = path
	}
	if runtime.GOOS == "windows" {
		resolved = strings.ToLower(resolved)
	}
	return resolved
}
