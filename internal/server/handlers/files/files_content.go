package files

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/watchdeck/watchdeck/internal/server/handlers/api"
	"github.com/watchdeck/watchdeck/internal/server/store"
)

// Content serves one stored file. Valid JSON passes through verbatim so the
// dashboard can render it; anything else is wrapped in a small text envelope.
func (h *Handler) Content(ctx *gin.Context) {
	key := strings.TrimPrefix(ctx.Param("path"), "/")

	data, err := h.store.Content(key)
	if err != nil {
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

	if json.Valid(data) {
		ctx.Data(http.StatusOK, "application/json", data)
		return
	}

	ctx.PureJSON(http.StatusOK, gin.H{
		"content": string(data),
		"type":    "text",
	})
}
