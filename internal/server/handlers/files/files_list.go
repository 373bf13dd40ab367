package files

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/watchdeck/watchdeck/internal/server/handlers/api"
)

// List serves the full file tree.
func (h *Handler) List(ctx *gin.Context) {
	tree, err := h.store.Tree()
	if err != nil {
		api.AbortWithError(ctx, http.StatusInternalServerError, api.CodeListingFailed, err)
		return
	}
	ctx.PureJSON(http.StatusOK, tree)
}
