package profile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gethiox/n64pad/internal/pkg/logger"
)

// Entry is a profile file found in the profile directory.
type Entry struct {
	Name string
	Path string
}

// List returns profile files of dir sorted by name, subdirectories included.
// A missing directory gives an empty list, files that fail to parse are skipped.
func List(dir string) ([]Entry, error) {
	root, err := filepath.EvalSymlinks(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("cannot resolve profile directory: %w", err)
	}

	var entries = make([]Entry, 0)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		_, err = FormatOf(path)
		if err != nil {
			return nil
		}

		name, _, err := Import(path)
		if err != nil {
			log.Info(fmt.Sprintf("profile %s load failed: %s", d.Name(), err), logger.Warning)
			return nil
		}
		entries = append(entries, Entry{Name: name, Path: path})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk failed: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := strings.ToLower(entries[i].Name), strings.ToLower(entries[j].Name)
		if a == b {
			return entries[i].Path < entries[j].Path
		}
		return a < b
	})
	return entries, nil
}

// PathFor returns where a profile of the given name is stored inside dir.
func PathFor(dir, name string, format Format) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ' || r == '.':
			return '_'
		default:
			return -1
		}
	}, name)
	if clean == "" {
		clean = "profile"
	}
	return filepath.Join(dir, clean+"."+format.String())
}
