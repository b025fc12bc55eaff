package repository

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/vncsmyrnk/waterpoll/internal/adapters/repository/mysql"
	"github.com/vncsmyrnk/waterpoll/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/waterpoll/internal/adapters/repository/sqlite"
	"github.com/vncsmyrnk/waterpoll/internal/config"
	"github.com/vncsmyrnk/waterpoll/internal/core/ports"
)

// Open connects to the vote store selected by cfg.StoreDriver. The returned
// close function releases the underlying connection pool.
func Open(ctx context.Context, cfg config.Config) (ports.VoteRepository, func() error, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := sql.Open("postgres", cfg.Postgres.ConnString())
		if err != nil {
			return nil, nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to reach postgres: %w", err)
		}
		return postgres.NewVoteRepository(db), db.Close, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewVoteRepository(db), db.Close, nil

	case config.DriverMySQL:
		gdb, sqlDB, err := mysql.Open(cfg.MySQLDSN)
		if err != nil {
			return nil, nil, err
		}
		return mysql.NewVoteRepository(gdb), sqlDB.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
