package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"suraksha-sathi/internal/domain"
)

// ModuleLoader loads the module catalog JSONB from Postgres.
type ModuleLoader struct {
	pool *pgxpool.Pool
}

func NewModuleLoader(pool *pgxpool.Pool) *ModuleLoader {
	return &ModuleLoader{pool: pool}
}

func (l *ModuleLoader) LoadModules(ctx context.Context) ([]domain.Module, error) {
	rows, err := l.pool.Query(ctx, `SELECT data FROM modules ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load modules: %w", err)
	}
	defer rows.Close()

	var modules []domain.Module
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan module: %w", err)
		}
		var module domain.Module
		if err := json.Unmarshal(raw, &module); err != nil {
			return nil, fmt.Errorf("unmarshal module: %w", err)
		}
		modules = append(modules, module)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load modules: %w", err)
	}
	return modules, nil
}
