// Package publish writes a session's table into PostgreSQL.
//
// Publishing is a one-shot export, not persistence: the target table is
// dropped and recreated from the current schema, then filled with COPY in a
// single transaction. Sessions themselves never read from the database.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/statentry/internal/config"
	"github.com/JonMunkholm/statentry/internal/core"
)

var (
	// ErrDisabled is returned when no database is configured.
	ErrDisabled = errors.New("publishing disabled")

	// ErrTableName is returned for table names that are not plain identifiers.
	ErrTableName = errors.New("invalid table name")
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// Publisher copies tables into a PostgreSQL database. A nil *Publisher or
// one created without a URL is disabled.
type Publisher struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// Connect opens a pool for cfg. When cfg has no URL it returns a disabled
// publisher and no error.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*Publisher, error) {
	if !cfg.Enabled() {
		return &Publisher{}, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Publisher{pool: pool, timeout: cfg.PublishTimeout}, nil
}

// Enabled reports whether Publish can reach a database.
func (p *Publisher) Enabled() bool {
	return p != nil && p.pool != nil
}

// Close releases the pool.
func (p *Publisher) Close() {
	if p.Enabled() {
		p.pool.Close()
	}
}

// Result describes a finished publish.
type Result struct {
	Table string `json:"table"`
	Rows  int64  `json:"rows"`
}

// Publish replaces table with the given schema and rows.
func (p *Publisher) Publish(ctx context.Context, table string, schema core.Schema, rows []core.Row) (Result, error) {
	if !p.Enabled() {
		return Result{}, ErrDisabled
	}
	if err := ValidateTableName(table); err != nil {
		return Result{}, err
	}
	if schema.IsZero() {
		return Result{}, core.ErrNoSchema
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	n, err := p.replaceTable(ctx, table, schema, rows)
	if err != nil {
		return Result{}, fmt.Errorf("publish failed: %w", err)
	}

	slog.Info("table published",
		"table", table,
		"rows", n,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return Result{Table: table, Rows: n}, nil
}

func (p *Publisher) replaceTable(ctx context.Context, table string, schema core.Schema, rows []core.Row) (int64, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	ident := pgx.Identifier{table}
	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+ident.Sanitize()); err != nil {
		return 0, fmt.Errorf("drop table: %w", err)
	}
	if _, err := tx.Exec(ctx, CreateTableSQL(table, schema)); err != nil {
		return 0, fmt.Errorf("create table: %w", err)
	}

	n, err := tx.CopyFrom(ctx, ident, schema.Names(), pgx.CopyFromRows(CopyRows(schema, rows)))
	if err != nil {
		return 0, fmt.Errorf("copy rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// ValidateTableName accepts unquoted PostgreSQL identifiers only.
func ValidateTableName(name string) error {
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q (use letters, digits and underscores)", ErrTableName, name)
	}
	return nil
}

// ColumnType maps a field type to its PostgreSQL column type.
func ColumnType(t core.FieldType) string {
	switch t {
	case core.Number:
		return "double precision"
	case core.Date:
		return "date"
	default:
		return "text"
	}
}

// CreateTableSQL returns the CREATE TABLE statement for schema. Column
// names are quoted so any variable name is usable.
func CreateTableSQL(table string, schema core.Schema) string {
	cols := make([]string, 0, schema.Len())
	for _, f := range schema.Fields() {
		cols = append(cols, pgx.Identifier{f.Name}.Sanitize()+" "+ColumnType(f.Type))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", pgx.Identifier{table}.Sanitize(), strings.Join(cols, ", "))
}

// CopyRows converts rows into COPY values in schema column order.
func CopyRows(schema core.Schema, rows []core.Row) [][]any {
	fields := schema.Fields()
	out := make([][]any, len(rows))
	for i, row := range rows {
		values := make([]any, len(fields))
		for j, f := range fields {
			values[j] = pgValue(f.Type, row[f.Name])
		}
		out[i] = values
	}
	return out
}

func pgValue(t core.FieldType, v core.Value) any {
	switch t {
	case core.Number:
		return pgtype.Float8{Float64: v.Num, Valid: v.Kind == core.KindNumber}
	case core.Date:
		return pgtype.Date{Time: v.Date, Valid: v.Kind == core.KindDate}
	default:
		return pgtype.Text{String: v.Text, Valid: v.Kind == core.KindText}
	}
}
