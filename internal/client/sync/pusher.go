package sync

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/watchdeck/watchdeck/internal/client/config"
)

// Pusher uploads every tracked file under the watched directories, one-shot.
// Useful to seed a fresh dashboard or to backfill after downtime.
type Pusher struct {
	cfg      *config.Config
	uploader *Uploader
}

func NewPusher(cfg *config.Config, uploader *Uploader) *Pusher {
	return &Pusher{
		cfg:      cfg,
		uploader: uploader,
	}
}

func (p *Pusher) Run(ctx context.Context) error {
	files := trackedFiles(p.cfg)
	if len(files) == 0 {
		slog.Info("no tracked files to push")
		return nil
	}

	uploaded, attempted, skipped := 0, 0, 0
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		if info, err := os.Stat(path); err == nil && info.Size() > p.cfg.MaxFileSize {
			slog.Warn("file too large, skipping", "path", path, "size", humanize.Bytes(uint64(info.Size())))
			skipped++
			continue
		}

		attempted++
		if err := p.uploader.Upload(ctx, path); err != nil {
			// per-target failures are already logged
			continue
		}
		uploaded++
	}

	slog.Info("push complete", "uploaded", uploaded, "attempted", attempted, "skipped", skipped)
	if uploaded < attempted {
		return fmt.Errorf("uploaded %d/%d files", uploaded, attempted)
	}
	return nil
}
