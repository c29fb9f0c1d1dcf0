package database

import (
	"context"
	"log/slog"
	"sync"

	"gorm.io/gorm"

	"github.com/totegamma/momento/internal/config"
)

// Provider owns the process-wide store handle. The handle is built on first use
// and the outcome, handle or error, is kept for the lifetime of the process.
type Provider struct {
	conf config.Store
	open func(dsn string) (*gorm.DB, error)

	once sync.Once
	db   *gorm.DB
	err  error
}

func NewProvider(conf config.Store) *Provider {
	return &Provider{conf: conf, open: NewPostgres}
}

// NewProviderWith lets callers supply the connector, e.g. a different dialect.
func NewProviderWith(conf config.Store, open func(dsn string) (*gorm.DB, error)) *Provider {
	return &Provider{conf: conf, open: open}
}

// Client returns the shared handle, constructing it on the first call.
func (p *Provider) Client() (*gorm.DB, error) {
	p.once.Do(func() {
		dsn, err := PostgresDSN(p.conf)
		if err != nil {
			p.err = err
			return
		}
		p.db, p.err = p.open(dsn)
		if p.err == nil {
			slog.Info("store client constructed", slog.String("module", "database"))
		}
	})
	return p.db, p.err
}

// Ping checks connectivity of the shared handle.
func (p *Provider) Ping(ctx context.Context) error {
	db, err := p.Client()
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
