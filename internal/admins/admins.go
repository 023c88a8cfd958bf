// Package admins loads the allow-list of user IDs permitted to manage posts.
package admins

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"blog/internal/middleware"
)

// AllowList is a set of privileged user IDs. The zero value is empty.
type AllowList struct {
	mu  sync.RWMutex
	ids map[uint]struct{}
}

// New returns an allow-list holding ids.
func New(ids ...uint) *AllowList {
	l := &AllowList{ids: make(map[uint]struct{}, len(ids))}
	for _, id := range ids {
		l.ids[id] = struct{}{}
	}
	return l
}

// LoadFile reads one numeric ID per line. Blank lines and lines starting
// with '#' are skipped. A missing file yields an empty list.
func LoadFile(path string) (*AllowList, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		middleware.Logger.Warn("admin allow-list not found, no user can manage posts", slog.String("path", path))
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open admin list: %w", err)
	}
	defer func() { _ = f.Close() }()

	l, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// Parse reads an allow-list in the file format.
func Parse(r io.Reader) (*AllowList, error) {
	l := New()
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		id, err := strconv.ParseUint(text, 10, 0)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("line %d: invalid user id %q", line, text)
		}
		l.ids[uint(id)] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return l, nil
}

// Contains reports whether id is privileged. A nil list contains nothing.
func (l *AllowList) Contains(id uint) bool {
	if l == nil || id == 0 {
		return false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.ids[id]
	return ok
}

// IDs returns the privileged IDs in ascending order.
func (l *AllowList) IDs() []uint {
	if l == nil {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]uint, 0, len(l.ids))
	for id := range l.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Add inserts id and reports whether it was new.
func (l *AllowList) Add(id uint) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ids == nil {
		l.ids = make(map[uint]struct{})
	}
	if _, ok := l.ids[id]; ok {
		return false
	}
	l.ids[id] = struct{}{}
	return true
}

// Remove deletes id and reports whether it was present.
func (l *AllowList) Remove(id uint) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.ids[id]; !ok {
		return false
	}
	delete(l.ids, id)
	return true
}

// WriteFile stores the list at path, one ID per line, replacing the file
// atomically.
func (l *AllowList) WriteFile(path string) error {
	var b strings.Builder
	b.WriteString("# User IDs allowed to create, edit and delete posts.\n")
	for _, id := range l.IDs() {
		b.WriteString(strconv.FormatUint(uint64(id), 10))
		b.WriteByte('\n')
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".admins-*")
	if err != nil {
		return err
	}
	if _, err := tmp.WriteString(b.String()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
