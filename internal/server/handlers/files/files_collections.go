package files

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/watchdeck/watchdeck/internal/server/handlers/api"
	"github.com/watchdeck/watchdeck/internal/server/journal"
)

// Collections serves the per-collection upload aggregates.
func (h *Handler) Collections(ctx *gin.Context) {
	stats := []*journal.CollectionStat{}

	if h.journal != nil {
		var err error
		stats, err = h.journal.Collections(ctx.Request.Context())
		if err != nil {
			api.AbortWithError(ctx, http.StatusInternalServerError, api.CodeJournalFailed, err)
			return
		}
		if stats == nil {
			stats = []*journal.CollectionStat{}
		}
	}

	ctx.PureJSON(http.StatusOK, gin.H{
		"collections": stats,
	})
}
