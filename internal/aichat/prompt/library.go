package prompt

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const fileExt = ".toml"

// ErrNotFound is returned when no prompt directory holds the requested name
var ErrNotFound = errors.New("prompt not found")

// Entry is a prompt available in a library
type Entry struct {
	Name string // Slash separated path without extension (e.g., "review/go")
	Dir  string // Directory the file is taken from
}

// Library looks prompts up across several directories.
// When a name exists in more than one directory, the last directory wins.
type Library struct {
	dirs []string
}

// NewLibrary creates a library over dirs, in increasing order of precedence
func NewLibrary(dirs []string) *Library {
	return &Library{dirs: dirs}
}

// Dirs returns the searched directories
func (l *Library) Dirs() []string {
	return l.dirs
}

// Path returns the file that provides the named prompt
func (l *Library) Path(name string) (string, error) {
	name = strings.TrimSuffix(name, fileExt)
	if name == "" {
		return "", fmt.Errorf("prompt name is empty")
	}

	for i := len(l.dirs) - 1; i >= 0; i-- {
		candidate := filepath.Join(l.dirs[i], filepath.FromSlash(name)+fileExt)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s (searched %s)", ErrNotFound, name, strings.Join(l.dirs, ", "))
}

// Format renders the named prompt around input with key:value arguments
func (l *Library) Format(name, input string, args []string) (string, error) {
	path, err := l.Path(name)
	if err != nil {
		return "", err
	}
	tmpl, err := Load(path)
	if err != nil {
		return "", err
	}
	vars, err := ParseArgs(args)
	if err != nil {
		return "", err
	}
	return tmpl.Render(input, vars), nil
}

// List returns every prompt sorted by name. Missing directories are skipped.
func (l *Library) List() ([]Entry, error) {
	found := make(map[string]string)
	for _, dir := range l.dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == dir && errors.Is(err, fs.ErrNotExist) {
					return fs.SkipDir
				}
				return err
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), fileExt) {
				return nil
			}

			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			found[filepath.ToSlash(strings.TrimSuffix(rel, fileExt))] = dir
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("error scanning prompt directory %s: %w", dir, err)
		}
	}

	entries := make([]Entry, 0, len(found))
	for name, dir := range found {
		entries = append(entries, Entry{Name: name, Dir: dir})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}
