// Package migrations embeds the SQL schema applied with goose at start-up.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"
	"github.com/wb-go/wbf/zlog"
)

// FS holds the goose migration files.
//
//go:embed *.sql
var FS embed.FS

// Up applies every pending migration to db.
func Up(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(FS)
	goose.SetLogger(zlogAdapter{})

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// zlogAdapter routes goose output through the application logger.
type zlogAdapter struct{}

func (zlogAdapter) Fatalf(format string, v ...any) {
	zlog.Logger.Error().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (zlogAdapter) Printf(format string, v ...any) {
	zlog.Logger.Info().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
