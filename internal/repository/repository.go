package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/config"
)

var (
	ErrWorkFull            = errors.New("work is full")
	ErrWorkHasPostulations = errors.New("work has active postulations")
)

type Repository struct {
	cfg    *config.Config
	dbpool *sql.DB
}

func NewRepository(cfg *config.Config, dbpool *sql.DB) *Repository {
	return &Repository{
		cfg:    cfg,
		dbpool: dbpool,
	}
}

func (r *Repository) queryContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
}

func (r *Repository) transactionContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
}

// Ping 用于健康检查
func (r *Repository) Ping() error {
	ctx, cancel := r.queryContext()
	defer cancel()

	return r.dbpool.PingContext(ctx)
}
