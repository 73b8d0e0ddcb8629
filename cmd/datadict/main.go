package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/alexanderjulianmartinez/datadict/internal/cli"
)

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "datadict error: %s\n", cli.Describe(err))
		os.Exit(1)
	}
}

func run(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return cli.Execute(ctx, args[1:], os.Stdout, os.Stderr)
}
