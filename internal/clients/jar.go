package clients

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"sync"
)

// FileJar is a cookie jar for one backend whose cookies survive restarts,
// so a CLI login lasts across invocations.
type FileJar struct {
	*cookiejar.Jar

	mu   sync.Mutex
	path string
	base *url.URL
}

type savedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewFileJar loads cookies for base from path. An empty path gives an
// in-memory jar.
func NewFileJar(path string, base *url.URL) (*FileJar, error) {
	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	j := &FileJar{Jar: inner, path: path, base: base}
	if path == "" {
		return j, nil
	}

	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return j, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cookie jar: %w", err)
	}
	var saved []savedCookie
	if err := json.Unmarshal(b, &saved); err != nil {
		return nil, fmt.Errorf("decode cookie jar %s: %w", path, err)
	}
	cookies := make([]*http.Cookie, 0, len(saved))
	for _, c := range saved {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	inner.SetCookies(base, cookies)
	return j, nil
}

func (j *FileJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.Jar.SetCookies(u, cookies)
	if err := j.save(); err != nil {
		slog.Warn("Failed to persist cookies", "path", j.path, "error", err)
	}
}

func (j *FileJar) save() error {
	if j.path == "" {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	current := j.Jar.Cookies(j.base)
	saved := make([]savedCookie, 0, len(current))
	for _, c := range current {
		saved = append(saved, savedCookie{Name: c.Name, Value: c.Value})
	}
	b, err := json.Marshal(saved)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(j.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(j.path, b, 0o600)
}

// Cookie returns the named cookie for the backend, if any.
func (j *FileJar) Cookie(name string) (string, bool) {
	for _, c := range j.Jar.Cookies(j.base) {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}
