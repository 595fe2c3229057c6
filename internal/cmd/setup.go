package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrison/dirmerge/internal/config"
	"github.com/harrison/dirmerge/internal/hasher"
	"github.com/harrison/dirmerge/internal/index"
	"github.com/harrison/dirmerge/internal/logger"
	"github.com/harrison/dirmerge/internal/scan"
)

// session bundles everything a subcommand needs after setup.
type session struct {
	cfg   *config.Config
	log   *logger.ConsoleLogger
	store *index.Store
}

func (s *session) close() {
	if s.store != nil {
		s.store.Close()
	}
}

// roots recovers the two tree roots from the populated index. Resolution
// commands use these rather than the command line, so a cached store
// resolves against the trees it was actually built from.
func (s *session) roots(ctx context.Context) ([]string, error) {
	rootA, rootB, err := s.store.Roots(ctx)
	if err != nil {
		return nil, err
	}
	return []string{rootA, rootB}, nil
}

// loadConfig resolves flags into a Config.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	if cfgPath == "" {
		cfgPath = config.DefaultConfigFile
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	if store, _ := cmd.Flags().GetString("store"); store != "" {
		cfg.Store = store
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	return cfg, nil
}

// openSession validates usage, opens the store, and populates it unless a
// prior store file already exists (the cache short-circuit: an existing
// store is reused verbatim and the trees are not re-scanned).
//
// absorb selects the size-deferred population for one-directional merges.
func openSession(ctx context.Context, cmd *cobra.Command, args []string, absorb bool) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log := logger.New(cmd.ErrOrStderr(), cfg.LogLevel)

	cached := index.Exists(cfg.Store)
	if !cached && len(args) != 2 {
		return nil, fmt.Errorf("expected exactly 2 tree roots, got %d (store %s holds no prior index)", len(args), cfg.Store)
	}

	store, err := index.Open(cfg.Store)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, log: log, store: store}

	if cached {
		log.Infof("Reusing existing index %s; trees were not re-scanned", cfg.Store)
		return s, nil
	}

	coord := scan.NewCoordinator(store, log, scan.Options{
		Ignore:    cfg.Ignore,
		Hasher:    hasher.NewWithPrefix(cfg.HashPrefixBytes),
		QueueSize: cfg.QueueSize,
	})

	if absorb {
		err = coord.PopulateAbsorb(ctx, args[0], args[1])
	} else {
		err = coord.Populate(ctx, args[0], args[1], true)
	}
	if err != nil {
		s.close()
		return nil, err
	}
	return s, nil
}

// stdinReader returns the default interactive line reader.
func stdinReader() LineReader {
	return newBufioReader(os.Stdin)
}
