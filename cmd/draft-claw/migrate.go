package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ramonehamilton/draft-claw/internal/storage"
)

func runMigrationCommand(args []string) (err error) {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	fs.Usage = printMigrationUsage
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		printMigrationUsage()
		os.Exit(1)
	}

	cfg, err := common.loadConfig()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return fmt.Errorf("error creating database directory: %w", err)
	}

	mgr, err := storage.NewMigrationManager(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("error creating migration manager: %w", err)
	}
	defer func() {
		if closeErr := mgr.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("error closing migration manager: %w", closeErr)
		}
	}()

	switch command := fs.Arg(0); command {
	case "up":
		fmt.Println("Applying all pending migrations...")
		if err := mgr.Up(); err != nil {
			return fmt.Errorf("error applying migrations: %w", err)
		}
	case "down":
		fmt.Println("Rolling back last migration...")
		if err := mgr.Down(); err != nil {
			return fmt.Errorf("error rolling back migration: %w", err)
		}
	case "status", "version":
	case "force":
		if fs.NArg() < 2 {
			return fmt.Errorf("force requires a version number")
		}
		version, err := strconv.Atoi(fs.Arg(1))
		if err != nil {
			return fmt.Errorf("invalid version number: %w", err)
		}
		if err := mgr.Force(version); err != nil {
			return fmt.Errorf("error forcing version: %w", err)
		}
	default:
		printMigrationUsage()
		return fmt.Errorf("unknown migrate command: %s", command)
	}

	version, dirty, err := mgr.Version()
	if err != nil {
		return fmt.Errorf("error getting version: %w", err)
	}
	if dirty {
		fmt.Printf("Current version: %d (dirty - migration failed or interrupted)\n", version)
		fmt.Println("Use 'migrate force <version>' to recover")
	} else {
		fmt.Printf("Current version: %d\n", version)
	}
	return nil
}

func printMigrationUsage() {
	fmt.Println("Usage: draft-claw migrate [flags] <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  up               Apply all pending migrations")
	fmt.Println("  down             Roll back the last migration")
	fmt.Println("  status           Show the current schema version")
	fmt.Println("  force <version>  Set the version without running migrations")
}
