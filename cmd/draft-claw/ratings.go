package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ramonehamilton/draft-claw/internal/eternal/cards"
)

func runRatingsCommand(args []string) error {
	if len(args) < 1 || args[0] != "import" {
		fmt.Println("Usage: draft-claw ratings import [-format 14.0] <file.tsv>")
		os.Exit(1)
	}

	fs := flag.NewFlagSet("ratings import", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	format := fs.String("format", "", "Format the ratings belong to (default: catalog.rating_format)")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	cfg, err := common.loadConfig()
	if err != nil {
		return err
	}
	path := fs.Arg(0)
	if path == "" {
		path = cfg.Catalog.RatingPath
	}
	if path == "" {
		return fmt.Errorf("no rating file given")
	}
	if *format == "" {
		*format = cfg.Catalog.RatingFormat
	}

	ratings, err := cards.LoadRatings(path)
	if err != nil {
		return err
	}

	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.service.ImportRatings(context.Background(), *format, ratings)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d ratings for format %s\n", n, *format)
	return nil
}
