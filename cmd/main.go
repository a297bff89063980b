package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"guildmirror/internal/bootstrap"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the configuration file")
	flag.Parse()

	b, err := bootstrap.New(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	if err := b.Start(errCh); err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		fmt.Printf("\nreceived %s\n", sig)
	case err := <-errCh:
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
	}

	b.Shutdown()
}
