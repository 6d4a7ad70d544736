package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/vittoria-dev/menu-engine/pkg/config"
	"github.com/vittoria-dev/menu-engine/pkg/logger"
	"github.com/vittoria-dev/menu-engine/pkg/migrate"
)

func main() {
	_ = godotenv.Load()

	dir := flag.String("dir", migrate.DefaultDir, "migrations directory")
	command := flag.String("command", "up", "goose command: up, down, status, version, up-to, down-to, create")
	name := flag.String("name", "", "migration name for the create command")
	target := flag.String("target", "", "target version for up-to/down-to")
	flag.Parse()

	if err := run(*dir, *command, *name, *target); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(dir, command, name, target string) error {
	ctx := context.Background()

	if command == "create" {
		if name == "" {
			return fmt.Errorf("create requires -name")
		}
		path, err := migrate.CreateSQLMigration(dir, name)
		if err != nil {
			return err
		}
		fmt.Println("created", path)
		return nil
	}

	if err := migrate.ValidateDir(dir); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logg := logger.New(logger.Options{
		ServiceName: "menu-engine-migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})

	db, err := sql.Open("postgres", cfg.DB.DSN)
	if err != nil {
		return fmt.Errorf("opening postgres: %w", err)
	}
	defer func() { _ = db.Close() }()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging postgres: %w", err)
	}

	switch command {
	case "up-to", "down-to":
		if target == "" {
			return fmt.Errorf("%s requires -target", command)
		}
		err = migrate.MigrateToVersion(ctx, db, dir, target)
	default:
		err = migrate.Run(ctx, db, dir, command)
	}
	if err != nil {
		return err
	}
	logg.Info(ctx, "migration command completed")
	return nil
}
