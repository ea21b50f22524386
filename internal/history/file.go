package history

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	logx "remindo/pkg/logx"
)

// fileStore is a dependency-free persistence backend.
//
// Files:
//   - <prefix>.notifications.jsonl (append-only JSON Lines)
//   - <prefix>.dedup.json          (snapshot, rewritten periodically)
type fileStore struct {
	log logx.Logger

	mu sync.Mutex

	notifFile *os.File

	dedupPath string
	dedup     map[string]int64 // unix milli
	dirty     int
}

// snapshotEvery bounds how many dedup writes can be lost on a crash.
const snapshotEvery = 16

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("history.path is required for file driver")
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	prefix := filepath.Join(dir, base)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	nf, err := os.OpenFile(prefix+".notifications.jsonl", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}

	dedupPath := prefix + ".dedup.json"
	dedup := map[string]int64{}
	_ = loadDedupSnapshot(dedupPath, dedup)
	pruneExpiredDedup(dedup)

	return &fileStore{
		log:       log,
		notifFile: nf,
		dedupPath: dedupPath,
		dedup:     dedup,
	}, nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err1, err2 error
	if s.dirty > 0 {
		err1 = s.writeSnapshotLocked()
	}
	if s.notifFile != nil {
		err2 = s.notifFile.Close()
		s.notifFile = nil
	}
	if err1 != nil {
		return err1
	}
	return err2
}

func (s *fileStore) AppendNotification(ctx context.Context, e Entry) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notifFile == nil {
		return errors.New("notification file closed")
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}
	return json.NewEncoder(s.notifFile).Encode(e)
}

func (s *fileStore) PutDedup(ctx context.Context, key string, until time.Time) error {
	_ = ctx
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dedup[key] = until.UnixMilli()
	s.dirty++
	if s.dirty >= snapshotEvery {
		if err := s.writeSnapshotLocked(); err != nil {
			s.log.Warn("dedup snapshot write failed", logx.Err(err))
		}
	}
	return nil
}

func (s *fileStore) GetDedup(ctx context.Context, key string) (time.Time, bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	ms, ok := s.dedup[key]
	if !ok {
		return time.Time{}, false, nil
	}
	until := time.UnixMilli(ms)
	if until.Before(time.Now()) {
		delete(s.dedup, key)
		s.dirty++
		return time.Time{}, false, nil
	}
	return until, true, nil
}

func (s *fileStore) writeSnapshotLocked() error {
	tmp := s.dedupPath + ".tmp"
	b, err := json.Marshal(s.dedup)
	if err != nil {
		return err
	}
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.dedupPath); err != nil {
		return err
	}
	s.dirty = 0
	return nil
}

func loadDedupSnapshot(path string, into map[string]int64) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, &into)
}

func pruneExpiredDedup(m map[string]int64) {
	now := time.Now().UnixMilli()
	for k, until := range m {
		if until < now {
			delete(m, k)
		}
	}
}
