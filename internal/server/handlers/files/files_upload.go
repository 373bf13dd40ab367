package files

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/watchdeck/watchdeck/internal/server/handlers/api"
	"github.com/watchdeck/watchdeck/internal/server/journal"
	"github.com/watchdeck/watchdeck/internal/server/store"
)

// Upload receives one multipart file from a watcher and stores it at its
// client-relative path.
func (h *Handler) Upload(ctx *gin.Context) {
	path := ctx.PostForm("path")
	collection := ctx.PostForm("collection")
	timestamp := ctx.PostForm("timestamp")
	if path == "" || collection == "" || timestamp == "" {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest,
			fmt.Errorf("missing required form fields: path, collection, timestamp"))
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeFileInvalid,
			fmt.Errorf("invalid file part: %w", err))
		return
	}

	fd, err := file.Open()
	if err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeFileInvalid,
			fmt.Errorf("open file part: %w", err))
		return
	}
	defer fd.Close()

	size, err := h.store.Save(path, fd)
	if err != nil {
		if errors.Is(err, store.ErrInvalidPath) {
			api.AbortWithError(ctx, http.StatusBadRequest, api.CodePathInvalid, err)
			return
		}
		api.AbortWithError(ctx, http.StatusInternalServerError, api.CodeStorageFailed, err)
		return
	}

	slog.Info("file uploaded", "path", path, "size", size, "collection", collection)
	h.recordUpload(ctx, path, collection, size)

	ctx.PureJSON(http.StatusOK, &UploadResponse{
		Status:     "success",
		Path:       path,
		Size:       size,
		Collection: collection,
		Timestamp:  timestamp,
	})
}

// recordUpload journals the upload. Journal failures never fail the request,
// the stored file is the source of truth.
func (h *Handler) recordUpload(ctx *gin.Context, path, collection string, size int64) {
	if h.journal == nil {
		return
	}

	err := h.journal.Record(ctx.Request.Context(), &journal.Entry{
		Path:       path,
		Collection: collection,
		Size:       size,
		Client:     ctx.GetHeader("X-Watchdeck-Client-Id"),
		UploadedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		slog.Error("journal record failed", "path", path, "error", err)
	}
}
