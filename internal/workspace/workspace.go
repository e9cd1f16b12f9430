// Package workspace describes the on-disk layout shared by the processing
// stages: one directory per stage, one file per page, and file names keyed
// by a "<prefix>-<page>" page key.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Stage directories, relative to the workspace root.
const (
	AttributesDir = "attributes"
	CroppedDir    = "cropped"
	GridsDir      = "grids"
	PagesDir      = "pages"
	SplitDir      = "split"
	TemplatesDir  = "templates"
	TextDir       = "text"
	MergedDir     = "merged"
)

// Dirs lists every stage directory.
var Dirs = []string{
	PagesDir, SplitDir, CroppedDir, TemplatesDir,
	TextDir, MergedDir, AttributesDir, GridsDir,
}

// Workspace is a processing tree rooted at Root.
type Workspace struct {
	Root string
}

func New(root string) Workspace {
	return Workspace{Root: root}
}

// Dir returns the path of a stage directory.
func (w Workspace) Dir(name string) string {
	return filepath.Join(w.Root, name)
}

// EnsureDirs creates the named stage directories, or all of them when none
// are named.
func (w Workspace) EnsureDirs(names ...string) error {
	if len(names) == 0 {
		names = Dirs
	}
	for _, name := range names {
		if err := os.MkdirAll(w.Dir(name), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", name, err)
		}
	}
	return nil
}

func (w Workspace) TemplatePath(key string) string {
	return filepath.Join(w.Dir(TemplatesDir), key+".txt")
}

func (w Workspace) TextPath(key string) string {
	return filepath.Join(w.Dir(TextDir), key+".txt")
}

func (w Workspace) MergedPath(key string) string {
	return filepath.Join(w.Dir(MergedDir), key+".txt")
}

// Keys returns the sorted page keys of the files named "<prefix>-*.<ext>"
// in a stage directory. An empty prefix matches every file with the
// extension.
func (w Workspace) Keys(dir, prefix, ext string) ([]string, error) {
	pattern := "*." + ext
	if prefix != "" {
		pattern = prefix + "-" + pattern
	}
	matches, err := filepath.Glob(filepath.Join(w.Dir(dir), pattern))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		keys = append(keys, FileKey(m))
	}
	slices.Sort(keys)
	return keys, nil
}

// FileKey returns the page key of a path: its base name without extension,
// so a/b/XXX-123.txt gives XXX-123.
func FileKey(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Prefix returns the document prefix of a page key, the part before the
// first "-".
func Prefix(key string) string {
	prefix, _, _ := strings.Cut(key, "-")
	return prefix
}

// CountFiles returns the number of files matching a glob pattern.
func CountFiles(pattern string) int {
	matches, _ := filepath.Glob(pattern)
	return len(matches)
}

// DeleteFiles removes every file matching a glob pattern.
func DeleteFiles(pattern string) error {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("glob %s: %w", pattern, err)
	}
	var errs []error
	for _, m := range matches {
		if err := os.Remove(m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FileNotEmpty reports whether path exists and has content.
func FileNotEmpty(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Size() > 0
}
