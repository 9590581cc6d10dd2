package main

import (
	"context"
	"flag"
	"fmt"
	"os"
)

func runGameCommand(args []string) error {
	if len(args) < 1 {
		printGameUsage()
		os.Exit(1)
	}

	fs := flag.NewFlagSet("game "+args[0], flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	if err := fs.Parse(args[1:]); err != nil {
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
	ctx := context.Background()

	switch args[0] {
	case "new":
		game, err := a.service.CreateGame(ctx)
		if err != nil {
			return err
		}
		if err := a.service.SetCurrentGameID(ctx, game.ID); err != nil {
			return err
		}
		fmt.Printf("New game: %s\n", game.ID)
	case "current":
		id, err := a.service.CurrentGameID(ctx)
		if err != nil {
			return err
		}
		if id == "" {
			fmt.Println("No current game")
			return nil
		}
		fmt.Printf("Current game: %s\n", id)
	case "use":
		if fs.NArg() < 1 {
			return fmt.Errorf("game use requires a game id")
		}
		game, err := a.service.EnsureGame(ctx, fs.Arg(0))
		if err != nil {
			return err
		}
		if err := a.service.SetCurrentGameID(ctx, game.ID); err != nil {
			return err
		}
		fmt.Printf("Current game: %s\n", game.ID)
	case "own":
		if fs.NArg() < 2 {
			return fmt.Errorf("game own requires a game id and a user")
		}
		game, err := a.service.OwnGame(ctx, fs.Arg(0), fs.Arg(1))
		if err != nil {
			return err
		}
		fmt.Printf("Game [%s] is now owned by [%s]\n", game.ID, game.OwnerID)
	case "channels":
		if fs.NArg() > 0 {
			if err := a.service.SetChannelList(ctx, fs.Args()); err != nil {
				return err
			}
		}
		channels, err := a.service.ChannelList(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Allowed channels: %v\n", channels)
	default:
		printGameUsage()
		return fmt.Errorf("unknown game command: %s", args[0])
	}
	return nil
}

func printGameUsage() {
	fmt.Println("Usage: draft-claw game <command> [flags] [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  new                   Create a game and make it current")
	fmt.Println("  current               Show the current game")
	fmt.Println("  use <game_id>         Make an existing game current")
	fmt.Println("  own <game_id> <user>  Set the owner of a game")
	fmt.Println("  channels [id...]      Show or replace the allowed chat channels")
}
