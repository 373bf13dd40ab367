package server

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/watchdeck/watchdeck/internal/server/journal"
	"github.com/watchdeck/watchdeck/internal/server/store"
)

type Services struct {
	Store   *store.Store
	Journal *journal.Journal // nil when the journal is disabled
}

func NewServices(config *Config, db *sqlx.DB) (*Services, error) {
	storeSvc, err := store.New(config.DataDir)
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}

	var journalSvc *journal.Journal
	if config.Journal.Enabled {
		if db == nil {
			return nil, fmt.Errorf("journal enabled but no database provided")
		}
		journalSvc, err = journal.New(db)
		if err != nil {
			return nil, fmt.Errorf("create journal: %w", err)
		}
	}

	return &Services{
		Store:   storeSvc,
		Journal: journalSvc,
	}, nil
}
