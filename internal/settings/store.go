package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"movieconv/internal/fileutil"
	"movieconv/internal/logging"
	"movieconv/internal/services"
)

const lockRetryDelay = 50 * time.Millisecond

// Store persists the last used settings and named presets as flat JSON.
type Store struct {
	settingsPath string
	presetsPath  string
	logger       *slog.Logger

	mu   sync.Mutex
	lock *flock.Flock
}

// NewStore returns a store backed by the given files. Neither file needs to
// exist yet.
func NewStore(settingsPath, presetsPath string, logger *slog.Logger) *Store {
	lockPath := filepath.Join(filepath.Dir(presetsPath), ".movieconv.lock")
	return &Store{
		settingsPath: settingsPath,
		presetsPath:  presetsPath,
		logger:       logging.NewComponentLogger(logger, "settings"),
		lock:         flock.New(lockPath),
	}
}

// Load returns the saved settings, or defaults when the file is missing or
// unreadable.
func (s *Store) Load() Record {
	data, err := os.ReadFile(s.settingsPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logging.WarnWithContext(s.logger, "settings unreadable; using defaults", "settings_read_failed",
				logging.String("path", s.settingsPath),
				logging.Error(err),
				logging.String(logging.FieldImpact, "last used settings are not restored"),
			)
		}
		return Default()
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		logging.WarnWithContext(s.logger, "settings file is not valid JSON; using defaults", "settings_decode_failed",
			logging.String("path", s.settingsPath),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix or delete the settings file"),
			logging.String(logging.FieldImpact, "last used settings are not restored"),
		)
		return Default()
	}
	return rec
}

// Save records rec as the last used settings.
func (s *Store) Save(ctx context.Context, rec Record) error {
	return s.withLock(ctx, func() error {
		return writeJSON(s.settingsPath, rec.Normalized())
	})
}

// Presets returns every saved preset. A missing file yields an empty map.
func (s *Store) Presets() (map[string]Record, error) {
	data, err := os.ReadFile(s.presetsPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]Record{}, nil
		}
		return nil, services.Wrap(services.ErrConfiguration, "settings", "read presets", s.presetsPath, err)
	}
	presets := map[string]Record{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return presets, nil
	}
	if err := json.Unmarshal(data, &presets); err != nil {
		return nil, services.Wrap(services.ErrValidation, "settings", "decode presets", s.presetsPath, err)
	}
	return presets, nil
}

// PresetNames returns preset names in sorted order.
func (s *Store) PresetNames() ([]string, error) {
	presets, err := s.Presets()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// Preset looks up one preset by name.
func (s *Store) Preset(name string) (Record, bool, error) {
	presets, err := s.Presets()
	if err != nil {
		return Record{}, false, err
	}
	rec, ok := presets[strings.TrimSpace(name)]
	return rec, ok, nil
}

// SavePreset stores rec under name, replacing any preset with that name.
func (s *Store) SavePreset(ctx context.Context, name string, rec Record) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return services.Wrap(services.ErrValidation, "settings", "save preset", "preset name is required", nil)
	}
	return s.withLock(ctx, func() error {
		presets, err := s.Presets()
		if err != nil {
			return err
		}
		presets[name] = rec.Normalized()
		return writeJSON(s.presetsPath, presets)
	})
}

// DeletePreset removes the named preset. It reports false when no preset had
// that name.
func (s *Store) DeletePreset(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	var deleted bool
	err := s.withLock(ctx, func() error {
		presets, err := s.Presets()
		if err != nil {
			return err
		}
		if _, ok := presets[name]; !ok {
			return nil
		}
		delete(presets, name)
		deleted = true
		return writeJSON(s.presetsPath, presets)
	})
	return deleted, err
}

func (s *Store) withLock(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.lock.Path()), 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}
	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire settings lock: %w", err)
	}
	if !locked {
		return services.Wrap(services.ErrTimeout, "settings", "acquire lock", s.lock.Path(), ctx.Err())
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Debug("settings lock release failed", logging.Error(err))
		}
	}()
	return fn()
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "    ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
