package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/heimdall-ai/heimdall/models"
	"github.com/spf13/afero"
)

const (
	// DefaultRulesFile is used when no path is configured.
	DefaultRulesFile = "rules.json"
	lockSuffix       = ".lock"
)

// ErrCorruptRules is returned when the rules file exists but is not a valid document.
var ErrCorruptRules = errors.New("rules file is not valid JSON")

// FileRuleStore implements RuleStore on top of a single JSON file.
// An advisory flock serializes writers across processes when locking is enabled;
// a mutex does the same within the process.
type FileRuleStore struct {
	fs       afero.Fs
	filePath string
	mu       sync.Mutex
	flk      *flock.Flock
}

// Option configures a FileRuleStore.
type Option func(*FileRuleStore)

// WithLocking enables the advisory file lock. It only has an effect on the OS filesystem.
func WithLocking(enabled bool) Option {
	return func(s *FileRuleStore) {
		if !enabled {
			s.flk = nil
			return
		}
		if _, ok := s.fs.(*afero.OsFs); ok {
			s.flk = flock.New(s.filePath + lockSuffix)
		}
	}
}

// NewFileRuleStore creates a store for filePath on fs. A nil fs means the OS filesystem.
func NewFileRuleStore(fs afero.Fs, filePath string, opts ...Option) *FileRuleStore {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if filePath == "" {
		filePath = DefaultRulesFile
	}
	s := &FileRuleStore{fs: fs, filePath: filePath}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the rules file path.
func (s *FileRuleStore) Path() string {
	return s.filePath
}

// Load reads the document from disk.
func (s *FileRuleStore) Load(ctx context.Context) (models.RuleDatabase, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return models.RuleDatabase{}, err
	}
	defer unlock()
	return s.loadInternal()
}

// Save writes the whole document to disk.
func (s *FileRuleStore) Save(ctx context.Context, db models.RuleDatabase) error {
	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	return s.saveInternal(db)
}

// Update loads, applies fn and saves under a single lock.
func (s *FileRuleStore) Update(ctx context.Context, fn func(db *models.RuleDatabase) error) error {
	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	db, err := s.loadInternal()
	if err != nil {
		return err
	}
	if err := fn(&db); err != nil {
		return err
	}
	return s.saveInternal(db)
}

// Close releases the lock file handle.
func (s *FileRuleStore) Close() error {
	if s.flk == nil {
		return nil
	}
	return s.flk.Close()
}

func (s *FileRuleStore) lock(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	if s.flk == nil {
		return s.mu.Unlock, nil
	}

	if dir := filepath.Dir(s.filePath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			s.mu.Unlock()
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	if err := s.flk.Lock(); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("lock %s: %w", s.flk.Path(), err)
	}
	return func() {
		_ = s.flk.Unlock()
		s.mu.Unlock()
	}, nil
}

func (s *FileRuleStore) loadInternal() (models.RuleDatabase, error) {
	data, err := afero.ReadFile(s.fs, s.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.RuleDatabase{}, nil
		}
		return models.RuleDatabase{}, fmt.Errorf("read rules file %s: %w", s.filePath, err)
	}
	if len(data) == 0 {
		return models.RuleDatabase{}, nil
	}

	var db models.RuleDatabase
	if err := json.Unmarshal(data, &db); err != nil {
		return models.RuleDatabase{}, fmt.Errorf("%w: %s: %v", ErrCorruptRules, s.filePath, err)
	}
	return db, nil
}

func (s *FileRuleStore) saveInternal(db models.RuleDatabase) error {
	data, err := json.MarshalIndent(db, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal rules: %w", err)
	}

	if dir := filepath.Dir(s.filePath); dir != "." && dir != "" {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	if err := afero.WriteFile(s.fs, s.filePath, data, 0o644); err != nil {
		return fmt.Errorf("write rules file %s: %w", s.filePath, err)
	}
	return nil
}
