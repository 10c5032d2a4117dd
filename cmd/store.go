package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/lead"
)

// openStore opens the configured lead store and runs migrations.
// Callers should defer Close().
func openStore(ctx context.Context) (lead.Store, error) {
	if err := cfg.Validate("store"); err != nil {
		return nil, err
	}

	var (
		st  lead.Store
		err error
	)
	switch cfg.Store.Driver {
	case "sqlite":
		st, err = lead.NewSQLite(cfg.Store.Path)
	case "postgres":
		st, err = lead.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}
