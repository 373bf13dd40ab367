package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/watchdeck/watchdeck/internal/utils"
)

const (
	// DefaultLocalURL is the dashboard started by `watchdeckd` on the same machine.
	DefaultLocalURL = "http://localhost:8000"

	// DefaultDebounce is how long a path must stay quiet before its upload fires.
	DefaultDebounce = 2 * time.Second

	// DefaultDeleteSettle is the grace period between a delete event and the
	// remote delete, so in-flight editor save/rename dances can finish.
	DefaultDeleteSettle = 1 * time.Second

	DefaultHTTPTimeout   = 30 * time.Second
	DefaultHealthTimeout = 5 * time.Second

	// DefaultMaxFileSize caps uploads at 50MB.
	DefaultMaxFileSize = 50 * 1024 * 1024

	DefaultAuthUsername = "researcher"
)

var (
	homeDir, _ = os.UserHomeDir()

	// DefaultConfigDir holds the config file and the CLI log, away from the
	// watched project tree.
	DefaultConfigDir = filepath.Join(homeDir, ".watchdeck")

	DefaultLogFilePath = filepath.Join(DefaultConfigDir, "watchdeck.log")

	// DefaultWatchDirs are the pipeline output directories, relative to the root.
	DefaultWatchDirs = []string{"outputs/chunks", "outputs/summaries", "prompts"}

	DefaultIgnorePatterns = []string{"*.tmp", "*.temp", ".DS_Store", "*.swp", "*.lock"}

	// DefaultExtensions limits reconcile and push scans to the artifact types
	// the dashboard actually renders.
	DefaultExtensions = []string{".json", ".txt"}

	DefaultProtectedDatasets = []string{"detectiveqa"}

	// DefaultProxyHosts are URL substrings that mark a target as sitting behind
	// the auth proxy. Plain dashboards never ask for credentials.
	DefaultProxyHosts = []string{"localhost:3000", "railway.app"}
)

// Target selects which dashboard(s) an operation addresses.
type Target string

const (
	TargetLocal  Target = "local"
	TargetServer Target = "server"
	TargetBoth   Target = "both"
)

func ParseTarget(s string) (Target, error) {
	switch Target(s) {
	case TargetLocal, TargetServer, TargetBoth:
		return Target(s), nil
	default:
		return "", fmt.Errorf("invalid target %q (must be 'local', 'server' or 'both')", s)
	}
}

// AuthConfig holds everything the credential gate needs. Password may be
// empty; the CLI prompts for it lazily on the first protected upload.
type AuthConfig struct {
	Username          string
	Password          string
	ProtectedDatasets []string
	ProxyHosts        []string
}

type Config struct {
	// Root is the project directory watch dirs and relative paths resolve against.
	Root string

	WatchDirs      []string
	WatchPatterns  []string
	IgnorePatterns []string
	Extensions     []string
	MaxFileSize    int64

	Debounce      time.Duration
	DeleteSettle  time.Duration
	HTTPTimeout   time.Duration
	HealthTimeout time.Duration

	LocalURL  string
	ServerURL string

	Auth AuthConfig

	// Path is the config file the values came from, for logging only.
	Path string
}

func (c *Config) Validate() error {
	if c.Root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolve working directory: %w", err)
		}
		c.Root = wd
	}

	root, err := utils.ResolvePath(c.Root)
	if err != nil {
		return fmt.Errorf("resolve root '%s': %w", c.Root, err)
	}
	c.Root = root

	if len(c.WatchDirs) == 0 {
		return fmt.Errorf("no watch directories configured")
	}
	if c.Debounce <= 0 {
		return fmt.Errorf("debounce must be positive, got %s", c.Debounce)
	}
	if c.DeleteSettle < 0 {
		return fmt.Errorf("delete settle must not be negative, got %s", c.DeleteSettle)
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max file size must be positive, got %d", c.MaxFileSize)
	}
	if c.LocalURL == "" {
		return fmt.Errorf("local dashboard url is not set")
	}
	return nil
}

// TargetURLs maps a target selector to the dashboard base URLs, in upload order.
func (c *Config) TargetURLs(target Target) ([]string, error) {
	switch target {
	case TargetLocal:
		return []string{c.LocalURL}, nil
	case TargetServer:
		if c.ServerURL == "" {
			return nil, fmt.Errorf("server dashboard url is not set (targets.server or WATCHDECK_TARGETS_SERVER)")
		}
		return []string{c.ServerURL}, nil
	case TargetBoth:
		if c.ServerURL == "" {
			return nil, fmt.Errorf("server dashboard url is not set (targets.server or WATCHDECK_TARGETS_SERVER)")
		}
		return []string{c.LocalURL, c.ServerURL}, nil
	default:
		return nil, fmt.Errorf("invalid target %q", target)
	}
}

// WatchPaths returns the watch directories resolved against the root.
func (c *Config) WatchPaths() []string {
	paths := make([]string, 0, len(c.WatchDirs))
	for _, dir := range c.WatchDirs {
		if filepath.IsAbs(dir) {
			paths = append(paths, filepath.Clean(dir))
			continue
		}
		paths = append(paths, filepath.Join(c.Root, dir))
	}
	return paths
}

// RelPath rewrites an absolute path relative to the root with forward
// slashes, the form the dashboard stores and lists. Paths outside the root
// pass through unchanged.
func (c *Config) RelPath(path string) string {
	rel, err := filepath.Rel(c.Root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return utils.NormPath(path)
	}
	return utils.NormPath(rel)
}
