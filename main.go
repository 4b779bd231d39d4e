package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/nwlogic/expresso-buildmeta/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "expresso-buildmeta: %v\n", err)
		return 1
	}
	return 0
}
