package files

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/watchdeck/watchdeck/internal/server/handlers/api"
	"github.com/watchdeck/watchdeck/internal/server/store"
)

// Delete removes one stored file and prunes emptied parent directories.
func (h *Handler) Delete(ctx *gin.Context) {
	key := strings.TrimPrefix(ctx.Param("path"), "/")

	if err := h.store.Delete(key); err != nil {
		switch {
		case errors.Is(err, store.ErrInvalidPath):
			api.AbortWithError(ctx, http.StatusBadRequest, api.CodePathInvalid, err)
		case errors.Is(err, store.ErrNotFound):
			api.AbortWithError(ctx, http.StatusNotFound, api.CodeFileNotFound,
				fmt.Errorf("file not found: %s", key))
		default:
			api.AbortWithError(ctx, http.StatusInternalServerError, api.CodeStorageFailed, err)
		}
		return
	}

	slog.Info("file deleted", "path", key)

	if h.journal != nil {
		if err := h.journal.Remove(ctx.Request.Context(), key); err != nil {
			slog.Error("journal remove failed", "path", key, "error", err)
		}
	}

	ctx.PureJSON(http.StatusOK, &DeleteResponse{
		Status:  "success",
		Path:    key,
		Message: "File deleted",
	})
}
