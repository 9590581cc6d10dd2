package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ramonehamilton/draft-claw/internal/commands"
)

func runREPLCommand(args []string) error {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	user := fs.String("user", "", "User name the commands run as (default: $USER)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := common.loadConfig()
	if err != nil {
		return err
	}
	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := a.loadCatalog(ctx); err != nil {
		return err
	}

	name := *user
	if name == "" {
		name = os.Getenv("USER")
	}
	if name == "" {
		name = "local"
	}

	fmt.Printf("draft-claw REPL as %s. Type '%s help' for commands, 'quit' to exit.\n", name, cfg.Commands.Prefix)
	return commands.RunREPL(ctx, a.processor(), os.Stdin, os.Stdout, name)
}
