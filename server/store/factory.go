package store

import (
	"context"
	"fmt"
	"strings"
)

// NewStore picks a history back-end from the DSN:
//   - "" or "memory": in-process
//   - redis:// or rediss://: Redis
//   - postgres:// or postgresql://: PostgreSQL
//   - anything else: a SQLite file path
func NewStore(ctx context.Context, dsn string) (HistoryStore, error) {
	switch {
	case dsn == "" || dsn == "memory":
		return NewMemoryStore(), nil
	case strings.HasPrefix(dsn, "redis://") || strings.HasPrefix(dsn, "rediss://"):
		s, err := NewRedisStore(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		return s, nil
	case strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://"):
		s, err := NewPostgresStore(dsn)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		return s, nil
	}

	s, err := NewSQLiteStore(dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	return s, nil
}
