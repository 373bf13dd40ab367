package sync

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/watchdeck/watchdeck/internal/client/config"
	"github.com/watchdeck/watchdeck/internal/utils"
)

// trackedFiles walks the watched directories and returns the absolute paths
// of every file with a tracked extension, sorted. This is the scan both the
// reconciler and the bulk pusher agree on, so "what exists locally" means
// the same thing to both.
func trackedFiles(cfg *config.Config) []string {
	var files []string

	for _, dir := range cfg.WatchPaths() {
		if !utils.DirExists(dir) {
			slog.Debug("watch dir does not exist, skipping scan", "dir", dir)
			continue
		}

		fsys := os.DirFS(dir)
		for _, ext := range cfg.Extensions {
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}

			matches, err := doublestar.Glob(fsys, "**/*"+ext, doublestar.WithFilesOnly())
			if err != nil {
				slog.Warn("scan failed", "dir", dir, "ext", ext, "error", err)
				continue
			}
			for _, match := range matches {
				files = append(files, filepath.Join(dir, filepath.FromSlash(match)))
			}
		}
	}

	sort.Strings(files)
	return files
}
