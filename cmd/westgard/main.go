package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/BTBurke/westgard"
	"github.com/BTBurke/westgard/pkg/server"
	"github.com/spf13/pflag"
)

func main() {

	opts, err := westgard.ParseCommandLine()
	if err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Printf("Could not parse configuration: %s\n\nUse westgard --help for options\n", err)
		}
		os.Exit(1)
	}

	cmd, errs := westgard.New(opts...)
	if len(errs) > 0 {
		fmt.Println("Error in config:")
		for _, e := range errs {
			fmt.Println(e)
		}
		os.Exit(1)
	}
	defer westgard.FlushErrorReports()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(cmd.Config.Listen) > 0 {
		srv := server.New(server.Config{
			Addr:     cmd.Config.Listen,
			Loader:   cmd.Loader(),
			Reporter: cmd.Reporter(),
			Logger:   cmd.Logger(),
		})
		if err := srv.Serve(ctx); err != nil {
			fmt.Println("Server error:", err)
			stop()
			westgard.FlushErrorReports()
			os.Exit(1)
		}
		return
	}

	if err := cmd.Exec(ctx); err != nil {
		fmt.Println("Analysis error:", err)
		stop()
		westgard.FlushErrorReports()
		os.Exit(1)
	}
}
