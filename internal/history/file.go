package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/moby/sys/atomicwriter"
	"go.uber.org/zap"
)

// errCorrupt marks a record file that exists but cannot be decoded.
var errCorrupt = errors.New("corrupt history record")

// FileStore keeps one JSON object per set in a directory.
type FileStore struct {
	dir    string
	logger *zap.Logger
}

// NewFileStore creates a FileStore rooted at dir. The directory is created
// on first commit.
func NewFileStore(dir string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{dir: dir, logger: logger.Named("history.file")}
}

// Path returns the record file for set.
func (s *FileStore) Path(set string) string {
	return filepath.Join(s.dir, set+".json")
}

func (s *FileStore) Load(_ context.Context, set string) History {
	log := s.logger.With(zap.String("set", set))
	if !ValidSetName(set) {
		log.Warn("invalid set name, using empty history")
		return History{}
	}

	rec, err := s.read(set)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Info("no history yet, starting empty", zap.String("path", s.Path(set)))
		} else {
			log.Warn("history unreadable, starting empty", zap.Error(err))
		}
		return History{}
	}

	h, skipped := rec.Decode()
	if len(skipped) > 0 {
		log.Warn("skipping history entries with bad timestamps", zap.Strings("ids", skipped))
	}
	return h
}

func (s *FileStore) Commit(_ context.Context, set string, ids []string, at time.Time) error {
	if !ValidSetName(set) {
		return fmt.Errorf("commit history: invalid set name %q", set)
	}
	if len(ids) == 0 {
		return nil
	}

	rec, err := s.read(set)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		rec = Record{}
	case errors.Is(err, errCorrupt):
		aside := s.Path(set) + ".corrupt"
		if mvErr := os.Rename(s.Path(set), aside); mvErr != nil {
			return fmt.Errorf("move corrupt history aside: %w", mvErr)
		}
		s.logger.Warn("moved corrupt history aside",
			zap.String("set", set), zap.String("path", aside), zap.Error(err))
		rec = Record{}
	default:
		return fmt.Errorf("re-read history: %w", err)
	}

	data, err := json.MarshalIndent(rec.With(ids, at), "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	if err := atomicwriter.WriteFile(s.Path(set), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

// Sets lists the sets with a record file, in lexical order. A missing
// directory holds no sets.
func (s *FileStore) Sets(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list history dir: %w", err)
	}
	var sets []string
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".json")
		if e.IsDir() || !ok || !ValidSetName(name) {
			continue
		}
		sets = append(sets, name)
	}
	return sets, nil
}

func (s *FileStore) read(set string) (Record, error) {
	data, err := os.ReadFile(s.Path(set))
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", errCorrupt, err)
	}
	if rec == nil {
		rec = Record{}
	}
	return rec, nil
}
