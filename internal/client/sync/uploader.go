package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/watchdeck/watchdeck/internal/client/config"
	"github.com/watchdeck/watchdeck/internal/dashsdk"
	"github.com/watchdeck/watchdeck/internal/utils"
)

// Target pairs a dashboard base URL with its SDK client.
type Target struct {
	URL    string
	Client *dashsdk.Client
}

func NewTargets(urls []string, timeout time.Duration) []*Target {
	targets := make([]*Target, 0, len(urls))
	for _, url := range urls {
		targets = append(targets, &Target{
			URL:    url,
			Client: dashsdk.New(url, dashsdk.WithTimeout(timeout)),
		})
	}
	return targets
}

// Uploader mirrors file changes to every target, strictly in order. There
// are no retries: the next change, a push, or a reconcile run is the
// recovery path.
type Uploader struct {
	cfg     *config.Config
	targets []*Target
	gate    *AuthGate
}

func NewUploader(cfg *config.Config, targets []*Target, gate *AuthGate) *Uploader {
	return &Uploader{
		cfg:     cfg,
		targets: targets,
		gate:    gate,
	}
}

func (u *Uploader) Targets() []*Target {
	return u.targets
}

// Upload sends the file at the absolute path to all targets sequentially.
// A file that vanished between the event and now is not an error, the
// matching delete event is already on its way.
func (u *Uploader) Upload(ctx context.Context, path string) error {
	if !utils.FileExists(path) {
		slog.Warn("file no longer exists, skipping upload", "path", path)
		return nil
	}

	relPath := u.cfg.RelPath(path)
	collection := DetectCollection(relPath)
	timestamp := time.Now().UTC().Format(time.RFC3339)

	succeeded := 0
	for _, target := range u.targets {
		if err := u.uploadTo(ctx, target, path, relPath, collection, timestamp); err != nil {
			slog.Error("upload failed", "target", target.URL, "path", relPath, "error", err)
			continue
		}
		succeeded++
	}

	if succeeded < len(u.targets) {
		return fmt.Errorf("uploaded to %d/%d targets: %s", succeeded, len(u.targets), relPath)
	}

	slog.Info("uploaded to all targets", "path", relPath, "collection", collection)
	return nil
}

func (u *Uploader) uploadTo(ctx context.Context, target *Target, path, relPath, collection, timestamp string) error {
	auth := u.gate.ForPath(ctx, target.URL, relPath)

	resp, err := target.Client.UploadFile(ctx, &dashsdk.UploadParams{
		FilePath:   path,
		Path:       relPath,
		Collection: collection,
		Timestamp:  timestamp,
		Auth:       auth,
	})
	if errors.Is(err, dashsdk.ErrFileNotFound) {
		slog.Warn("file vanished mid-upload, skipping", "path", path)
		return nil
	}
	if err != nil {
		return err
	}

	slog.Info("uploaded", "target", target.URL, "path", relPath, "collection", collection, "size", humanize.Bytes(uint64(resp.Size)))
	return nil
}

// Delete removes the path from all targets. A 404 means someone got there
// first, which is just as deleted.
func (u *Uploader) Delete(ctx context.Context, path string) error {
	relPath := u.cfg.RelPath(path)

	succeeded := 0
	for _, target := range u.targets {
		auth := u.gate.ForPath(ctx, target.URL, relPath)

		deleted, err := target.Client.DeleteFile(ctx, relPath, auth)
		if err != nil {
			slog.Error("delete failed", "target", target.URL, "path", relPath, "error", err)
			continue
		}

		if deleted {
			slog.Info("deleted", "target", target.URL, "path", relPath)
		} else {
			slog.Debug("already deleted", "target", target.URL, "path", relPath)
		}
		succeeded++
	}

	if succeeded < len(u.targets) {
		return fmt.Errorf("deleted from %d/%d targets: %s", succeeded, len(u.targets), relPath)
	}
	return nil
}
