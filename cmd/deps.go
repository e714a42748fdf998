package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/user/shelfmark/internal/account"
	"github.com/user/shelfmark/internal/bookmarks"
	"github.com/user/shelfmark/internal/catalog"
	"github.com/user/shelfmark/internal/config"
	"github.com/user/shelfmark/internal/geo"
	"github.com/user/shelfmark/internal/logger"
	"github.com/user/shelfmark/internal/store"
)

// app wires the core components for one command invocation.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	closeLog func() error
	accounts *account.Manager
	marks    *bookmarks.Manager
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, closeLog := logger.OpenFile(cfg.LogPath())

	accounts, err := account.NewManager(store.New(cfg.DataDir), log)
	if err != nil {
		// Corrupt or unreadable store: carry on with an empty list but
		// tell the user their saved data was not loaded.
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	return &app{
		cfg:      cfg,
		logger:   log,
		closeLog: closeLog,
		accounts: accounts,
		marks:    bookmarks.NewManager(accounts, log),
	}, nil
}

func (a *app) Close() {
	if a.closeLog != nil {
		a.closeLog()
	}
}

func (a *app) catalogClient() *catalog.Client {
	return catalog.NewClient(
		a.cfg.Catalog.BaseURL,
		a.cfg.Catalog.CoversURL,
		&http.Client{Timeout: a.cfg.Catalog.Timeout},
		a.logger,
	)
}

func (a *app) geoClient() *geo.Client {
	return geo.NewClient(
		a.cfg.Geo.CountriesURL,
		a.cfg.Geo.IPInfoURL,
		a.cfg.DataDir,
		&http.Client{Timeout: a.cfg.Geo.Timeout},
		a.logger,
	)
}
