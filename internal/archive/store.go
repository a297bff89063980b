package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"guildmirror/internal/models"
)

var (
	// ErrNotFound means the backup file does not exist.
	ErrNotFound = errors.New("archive: backup file not found")
	// ErrMalformed means the file exists but is not a valid snapshot document.
	ErrMalformed = errors.New("archive: backup file is not valid JSON")
)

// Store persists guild snapshots as flat JSON documents with
// timestamp-prefixed filenames, and reads them back verbatim.
type Store struct {
	dir string
	log *zap.Logger
}

func NewStore(dir string, log *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup directory %s: %w", dir, err)
	}
	return &Store{dir: dir, log: log}, nil
}

// Save writes snap to a new file named
// <timestamp>-<guild name>-<guild id>.json and returns its path.
func (s *Store) Save(snap *models.Snapshot) (string, error) {
	data, err := sonic.MarshalIndent(snap, "", "    ")
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	name := fmt.Sprintf("%s-%s-%s.json",
		time.Now().Format("20060102-150405"),
		safeName(snap.Guild.Name),
		snap.Guild.ID)
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}

	s.log.Info("backup saved", zap.String("path", path))
	return path, nil
}

// Load reads a snapshot back. A missing file yields ErrNotFound, a
// present-but-unparsable one ErrMalformed; the two are distinguishable
// with errors.Is.
func (s *Store) Load(path string) (*models.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("read backup %s: %w", path, err)
	}

	var snap models.Snapshot
	if err := sonic.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%s: %w", path, ErrMalformed)
	}
	return &snap, nil
}

// LoadNamed loads a backup by file name, resolved inside the store
// directory. Directory components in name are stripped, so a caller can
// pass either a bare name or a path List returned, and nothing can read
// outside the store.
func (s *Store) LoadNamed(name string) (*models.Snapshot, error) {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return s.Load(filepath.Join(s.dir, base))
}

// List returns the backup files in the store, most recent first.
func (s *Store) List() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(matches)))
	return matches, nil
}

// safeName strips anything that could escape the backup directory or
// upset a filesystem from a guild display name.
func safeName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return "guild"
	}
	return cleaned
}
