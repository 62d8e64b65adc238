package state

import (
	"github.com/agrovista/mediavault/config"
	"github.com/agrovista/mediavault/media/ingest"
	"github.com/agrovista/mediavault/storage/asset"
)

// State carries the server's shared dependencies into handlers. There is no
// ambient global store: every handler works against the store handle wired
// here, so tests can build a State around a fresh store.
type State struct {
	Cfg      *config.Config
	Store    asset.Store
	Ingestor *ingest.Ingestor
}
