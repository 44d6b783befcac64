package cli

import (
	"fmt"

	"github.com/jrsteele09/go-task-client/internal/config"
	"github.com/jrsteele09/go-task-client/token/refresh"
	"github.com/jrsteele09/go-task-client/token/refresh/filestore"
	"github.com/jrsteele09/go-task-client/token/refresh/sqlitestore"
	"github.com/rs/zerolog/log"
)

// openTokenRepo returns the configured refresh token backend and, when it
// holds resources, a close function.
func openTokenRepo(cfg config.Config) (refresh.Repo, func() error, error) {
	dir := cfg.GetDataFolder()

	switch cfg.GetTokenStore() {
	case config.TokenStoreSQLite:
		store, err := sqlitestore.Open(dir)
		if err != nil {
			return nil, nil, err
		}
		log.Debug().Str("dir", dir).Msg("Using sqlite refresh token store")
		return store, store.Close, nil

	case config.TokenStoreFile, "":
		key, err := cfg.GetTokenKey()
		if err != nil {
			return nil, nil, err
		}
		store, err := filestore.New(dir, key)
		if err != nil {
			return nil, nil, err
		}
		log.Debug().Str("path", store.Path()).Bool("sealed", key != nil).Msg("Using file refresh token store")
		return store, nil, nil
	}
	return nil, nil, fmt.Errorf("unknown token store %q (want file or sqlite)", cfg.GetTokenStore())
}
