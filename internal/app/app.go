package app

import (
	"context"
	"log"

	"taskdesk/internal/config"
	"taskdesk/internal/pdf"
	"taskdesk/internal/repositories"
	"taskdesk/internal/services"
	"taskdesk/internal/session"
)

// App is the backend a front end talks to.
type App struct {
	Config   *config.Config
	Store    *repositories.Store
	Accounts services.AccountDirectory
	Tasks    services.TaskBoard
	Sessions *session.Manager
	Reports  pdf.Generator
}

// New opens the store, initializes it and wires the services.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === DB ===
	store, err := repositories.Open(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.BusyTimeoutMS)
	if err != nil {
		return nil, err
	}

	// === Services ===
	accounts := services.NewAccountDirectory(store)
	if err := accounts.Initialize(ctx); err != nil {
		if cerr := store.Close(); cerr != nil {
			log.Printf("[app] close store: %v", cerr)
		}
		return nil, err
	}

	return &App{
		Config:   cfg,
		Store:    store,
		Accounts: accounts,
		Tasks:    services.NewTaskBoard(store),
		Sessions: session.NewManager(cfg.Session.Secret, cfg.Session.TTL),
		Reports:  pdf.NewReportGenerator(cfg.Reports.Dir, cfg.Reports.FontPath),
	}, nil
}

func (a *App) Close() error {
	return a.Store.Close()
}
