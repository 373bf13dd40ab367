package watcher

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dustin/go-humanize"
	gitignore "github.com/sabhiram/go-gitignore"
	"github.com/watchdeck/watchdeck/internal/utils"
)

// IgnoreFileName holds extra gitignore-style rules, read from the project root.
const IgnoreFileName = ".watchdeckignore"

// Filter decides which create/write events turn into uploads. Checks run in
// order: the size cap first, then ignore patterns, then allow patterns.
// Allow patterns only apply when at least one is configured.
type Filter struct {
	root        string
	maxFileSize int64
	ignore      []string
	allow       []string
	ignoreFile  *gitignore.GitIgnore
}

func NewFilter(root string, maxFileSize int64, ignorePatterns, allowPatterns []string) *Filter {
	return &Filter{
		root:        root,
		maxFileSize: maxFileSize,
		ignore:      ignorePatterns,
		allow:       allowPatterns,
	}
}

// Load reads the ignore file from the root if one exists. Safe to skip;
// the configured patterns work without it.
func (f *Filter) Load() {
	ignorePath := filepath.Join(f.root, IgnoreFileName)
	if !utils.FileExists(ignorePath) {
		return
	}

	file, err := os.Open(ignorePath)
	if err != nil {
		slog.Warn("failed to open ignore file", "path", ignorePath, "error", err)
		return
	}
	defer file.Close()

	rules := 0
	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if line != "" {
			lines = append(lines, line)
			rules++
		}
	}

	if err := scanner.Err(); err != nil {
		slog.Warn("error reading ignore file", "path", ignorePath, "error", err)
		return
	}

	f.ignoreFile = gitignore.CompileIgnoreLines(lines...)
	slog.Info("loaded ignore file", "path", ignorePath, "rules", rules)
}

// ShouldProcess reports whether a file at path is worth uploading.
func (f *Filter) ShouldProcess(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		// vanished between the event and now
		return false
	}
	if info.IsDir() {
		return false
	}

	if info.Size() > f.maxFileSize {
		slog.Warn("file too large, skipping", "path", path, "size", humanize.Bytes(uint64(info.Size())))
		return false
	}

	rel := f.relPath(path)
	base := filepath.Base(path)

	for _, pattern := range f.ignore {
		if matchGlob(pattern, rel, base) {
			slog.Debug("file matches ignore pattern, skipping", "path", path, "pattern", pattern)
			return false
		}
	}

	if f.ignoreFile != nil && f.ignoreFile.MatchesPath(rel) {
		slog.Debug("file matches ignore file rule, skipping", "path", path)
		return false
	}

	if len(f.allow) > 0 {
		for _, pattern := range f.allow {
			if matchGlob(pattern, rel, base) {
				return true
			}
		}
		slog.Debug("file matches no watch pattern, skipping", "path", path)
		return false
	}

	return true
}

// Drop is the FilterFunc adapter for Watcher.FilterPaths.
func (f *Filter) Drop(path string) bool {
	return !f.ShouldProcess(path)
}

func (f *Filter) relPath(path string) string {
	rel, err := filepath.Rel(f.root, path)
	if err != nil {
		return utils.NormPath(path)
	}
	return utils.NormPath(rel)
}

// matchGlob matches a pattern against the root-relative path and, for bare
// patterns like "*.tmp", against the file name alone.
func matchGlob(pattern, rel, base string) bool {
	if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
		return true
	}
	ok, err := doublestar.Match(pattern, base)
	return err == nil && ok
}
