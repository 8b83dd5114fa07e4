package export

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresExporter writes results to a PostgreSQL database through pgx.
type PostgresExporter struct {
	*sqlExporter
}

func NewPostgresExporter(ctx context.Context, dsn string) (*PostgresExporter, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach postgres: %w", err)
	}

	e := &PostgresExporter{newSQLExporter("postgres", db, sq.Dollar)}
	if err := e.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return e, nil
}
