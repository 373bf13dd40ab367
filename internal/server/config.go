package server

import (
	"fmt"
	"path/filepath"

	"github.com/watchdeck/watchdeck/internal/server/store"
	"github.com/watchdeck/watchdeck/internal/utils"
)

const (
	DefaultAddr      = ":8000"
	DefaultRateLimit = "100-S"

	// DeployDataDir is the persistent volume mount on the deployment
	// platform. It wins over the local fallback when it exists.
	DeployDataDir  = "/data"
	DefaultDataDir = "./data"
)

type Config struct {
	HTTP    HTTPConfig
	DataDir string
	Journal JournalConfig

	// RateLimit is a ulule/limiter formatted rate ("100-S"). Empty disables
	// rate limiting.
	RateLimit string
	LogLevel  string
}

type HTTPConfig struct {
	Addr string
	// Domain is the public domain. Setting it enables HSTS and the HTTPS
	// redirect.
	Domain   string
	CertFile string
	KeyFile  string
}

type JournalConfig struct {
	Enabled bool
	// Path of the SQLite database. Defaults under the reserved prefix inside
	// the data dir.
	Path string
}

func (c *Config) Validate() error {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = DefaultAddr
	}

	if c.DataDir == "" {
		if utils.DirExists(DeployDataDir) {
			c.DataDir = DeployDataDir
		} else {
			c.DataDir = DefaultDataDir
		}
	}

	dataDir, err := utils.ResolvePath(c.DataDir)
	if err != nil {
		return fmt.Errorf("resolve data dir '%s': %w", c.DataDir, err)
	}
	c.DataDir = dataDir

	if c.Journal.Enabled && c.Journal.Path == "" {
		c.Journal.Path = filepath.Join(c.DataDir, store.ReservedPrefix, "journal.db")
	}

	return nil
}
