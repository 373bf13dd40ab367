// Package files implements the upload, listing, content and delete endpoints
// backed by the filesystem store and the optional upload journal.
package files

import (
	"github.com/watchdeck/watchdeck/internal/server/journal"
	"github.com/watchdeck/watchdeck/internal/server/store"
)

type Handler struct {
	store   *store.Store
	journal *journal.Journal // nil when the journal is disabled
}

func New(store *store.Store, journal *journal.Journal) *Handler {
	return &Handler{
		store:   store,
		journal: journal,
	}
}
