package sink

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/shopcrawl/shopcrawl/internal/catalog"
)

// PgxConn is the slice of pgx.Conn the sink needs; pgxmock satisfies it in
// tests.
type PgxConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Close(ctx context.Context) error
}

const insertRowSQL = `
	INSERT INTO catalog_rows (
		run_id, code, collection, category, name, variant_name, price,
		in_stock, url, image_url, body, key_information, how_to_use,
		key_ingredients, all_ingredients
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
`

// PostgresSink inserts one record per emitted row. It assumes a table:
//
//	CREATE TABLE catalog_rows (
//		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//		run_id UUID NOT NULL,
//		code TEXT, collection TEXT, category TEXT, name TEXT,
//		variant_name TEXT, price TEXT, in_stock TEXT, url TEXT,
//		image_url TEXT, body TEXT, key_information TEXT, how_to_use TEXT,
//		key_ingredients JSONB, all_ingredients TEXT,
//		created_at TIMESTAMPTZ DEFAULT NOW()
//	);
type PostgresSink struct {
	conn  PgxConn
	runID string
}

// NewPostgresSink connects to dsn and pings the server.
func NewPostgresSink(ctx context.Context, dsn, runID string) (*PostgresSink, error) {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresSink{conn: conn, runID: runID}, nil
}

// NewPostgresSinkWithConn wires an existing connection; used by tests.
func NewPostgresSinkWithConn(conn PgxConn, runID string) *PostgresSink {
	return &PostgresSink{conn: conn, runID: runID}
}

// WriteHeader is a no-op; the table schema is the header.
func (s *PostgresSink) WriteHeader() error { return nil }

// WriteRow inserts one row.
func (s *PostgresSink) WriteRow(ctx context.Context, row catalog.Row) error {
	ingredients, err := MarshalIngredients(row.KeyIngredients)
	if err != nil {
		return err
	}
	_, err = s.conn.Exec(ctx, insertRowSQL,
		s.runID,
		row.Code,
		row.Collection,
		row.Category,
		row.Name,
		row.VariantName,
		row.Price,
		row.InStock,
		row.URL,
		row.ImageURL,
		row.Body,
		row.KeyInformation,
		row.HowToUse,
		ingredients,
		row.AllIngredients,
	)
	if err != nil {
		return fmt.Errorf("insert row: %w", err)
	}
	return nil
}

// Close terminates the connection.
func (s *PostgresSink) Close() error {
	if err := s.conn.Close(context.Background()); err != nil {
		return fmt.Errorf("close postgres connection: %w", err)
	}
	return nil
}
