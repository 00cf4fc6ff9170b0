package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// FileStore keeps values in a JSON object on disk. Other processes pointing
// at the same file are observed through fsnotify.
type FileStore struct {
	path   string
	logger *slog.Logger

	mu       sync.Mutex
	snapshot map[string]string // last state this instance wrote or observed
	watchers map[chan Change]struct{}
	fsw      *fsnotify.Watcher
	closed   bool
}

func NewFileStore(path string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	s := &FileStore{
		path:     path,
		logger:   logger,
		watchers: map[chan Change]struct{}{},
	}
	data, err := s.read()
	if err != nil {
		return nil, err
	}
	s.snapshot = data
	return s, nil
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return "", false, err
	}
	v, ok := data[key]
	return v, ok, nil
}

func (s *FileStore) Set(_ context.Context, key, value string) error {
	return s.update(func(data map[string]string) { data[key] = value })
}

func (s *FileStore) Remove(_ context.Context, key string) error {
	return s.update(func(data map[string]string) { delete(data, key) })
}

func (s *FileStore) update(fn func(map[string]string)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	data, err := s.read()
	if err != nil {
		return err
	}
	// Writes from other instances that landed before ours are still news
	// to our watchers.
	s.emitLocked(diff(s.snapshot, data))

	fn(data)
	if err := s.write(data); err != nil {
		return err
	}
	s.snapshot = data
	return nil
}

func (s *FileStore) Watch(ctx context.Context) (<-chan Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	if s.fsw == nil {
		fsw, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("create watcher: %w", err)
		}
		// Writes are atomic renames, so the directory is watched rather
		// than the file itself.
		if err := fsw.Add(filepath.Dir(s.path)); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", filepath.Dir(s.path), err)
		}
		s.fsw = fsw
		go s.processEvents(fsw)
		s.logger.Debug("Watching storage file", "path", s.path)
	}

	ch := make(chan Change, watchBuffer)
	s.watchers[ch] = struct{}{}

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.watchers[ch]; ok {
			delete(s.watchers, ch)
			close(ch)
		}
	}()
	return ch, nil
}

func (s *FileStore) processEvents(fsw *fsnotify.Watcher) {
	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			s.refresh()

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			s.logger.Error("Storage watcher error", "path", s.path, "error", err)
		}
	}
}

func (s *FileStore) refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	data, err := s.read()
	if err != nil {
		s.logger.Warn("Failed to reload storage file", "path", s.path, "error", err)
		return
	}
	s.emitLocked(diff(s.snapshot, data))
	s.snapshot = data
}

func (s *FileStore) emitLocked(changes []Change) {
	for _, c := range changes {
		for ch := range s.watchers {
			select {
			case ch <- c:
			default:
				s.logger.Warn("Dropping storage change for slow watcher", "key", c.Key)
			}
		}
	}
}

func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for ch := range s.watchers {
		delete(s.watchers, ch)
		close(ch)
	}
	if s.fsw != nil {
		return s.fsw.Close()
	}
	return nil
}

func (s *FileStore) read() (map[string]string, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read storage: %w", err)
	}
	data := map[string]string{}
	if len(b) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("decode storage %s: %w", s.path, err)
	}
	return data, nil
}

func (s *FileStore) write(data map[string]string) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode storage: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".storage-*")
	if err != nil {
		return fmt.Errorf("write storage: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write storage: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write storage: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write storage: %w", err)
	}
	return nil
}

// diff lists the keys whose value differs between before and after.
func diff(before, after map[string]string) []Change {
	var out []Change
	for k, v := range after {
		if old, ok := before[k]; !ok || old != v {
			out = append(out, Change{Key: k, NewValue: strPtr(v)})
		}
	}
	for k := range before {
		if _, ok := after[k]; !ok {
			out = append(out, Change{Key: k})
		}
	}
	return out
}
