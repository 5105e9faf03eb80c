package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/samijaber1/bloomwatch/internal/abilitycache"
	"github.com/samijaber1/bloomwatch/internal/analysis"
	"github.com/samijaber1/bloomwatch/internal/config"
	"github.com/samijaber1/bloomwatch/internal/haste"
	"github.com/samijaber1/bloomwatch/internal/profile"
	"github.com/samijaber1/bloomwatch/internal/storage/sqlite"
)

// deps are the collaborators shared by every command
type deps struct {
	cfg      config.Config
	logger   *zap.Logger
	profiles *profile.Set
	analyzer *analysis.Analyzer
	names    *abilitycache.Cache
	store    *sqlite.Store
}

// setup loads configuration and builds the analyzer. The store is opened
// only when withStore is set and a database is configured.
func setup(withStore bool) (*deps, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := cfg.Logger()
	if err != nil {
		return nil, err
	}

	d := &deps{cfg: cfg, logger: logger}

	if cfg.ProfileDirectory != "" {
		d.profiles, err = profile.Load(cfg.ProfileDirectory)
	} else {
		d.profiles, err = profile.Builtin()
	}
	if err != nil {
		d.close()
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}

	var table *haste.Table
	if cfg.HasteTable != "" {
		table, err = haste.LoadTable(cfg.HasteTable)
	} else {
		table, err = haste.DefaultTable()
	}
	if err != nil {
		d.close()
		return nil, fmt.Errorf("failed to load haste table: %w", err)
	}

	d.analyzer = analysis.NewAnalyzer(d.profiles, table, logger)

	d.names, err = abilitycache.Open(cfg.AbilityCachePath, logger)
	if err != nil {
		d.close()
		return nil, err
	}

	if withStore && cfg.DatabasePath != "" {
		d.store, err = sqlite.NewStore(cfg.DatabasePath)
		if err != nil {
			d.close()
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
	}

	return d, nil
}

func (d *deps) close() {
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			d.logger.Warn("failed to close database", zap.Error(err))
		}
	}
	if d.names != nil {
		if err := d.names.Close(); err != nil {
			d.logger.Warn("failed to close ability cache", zap.Error(err))
		}
	}
	d.logger.Sync()
}
