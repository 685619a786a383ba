package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/bookcase/internal/buildinfo"
	"github.com/dmitrijs2005/bookcase/internal/client/cli"
	"github.com/dmitrijs2005/bookcase/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stderr)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx, cfg, os.Args[1:]); err != nil {
		stop()
		os.Exit(1)
	}

}
