package postgres

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"text/template"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

var schemaTemplate = template.Must(template.New("schema").Parse(schemaSQL))

// RenderSchema returns the DDL for the given table prefix
func RenderSchema(tables *TableNames, prefix string) (string, error) {
	var buf bytes.Buffer
	err := schemaTemplate.Execute(&buf, struct {
		T      *TableNames
		Prefix string
	}{T: tables, Prefix: prefix})
	if err != nil {
		return "", fmt.Errorf("render schema: %w", err)
	}
	return buf.String(), nil
}

// EnsureSchema creates every table and index that does not exist yet
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames, prefix string) error {
	ddl, err := RenderSchema(tables, prefix)
	if err != nil {
		return err
	}
	// Simple protocol accepts multiple statements in one Exec
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Conn().PgConn().Exec(ctx, ddl).ReadAll(); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// DropSchema drops every table, children first
func DropSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	for _, table := range tables.All() {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}
