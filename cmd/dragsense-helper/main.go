// dragsense-helper is the short-lived per-drag sensor process. The host
// spawns one instance per mouse-down with the pointer's logical coordinates
// as arguments; the helper arms a sensor constellation, streams drag events
// as JSON lines on stdout, and exits after the drop or on the stdin
// shutdown handshake.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/1broseidon/dragsense/internal/config"
	"github.com/1broseidon/dragsense/internal/helper"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "Usage: dragsense-helper <x> <y>")
		os.Exit(2)
	}

	x, err := strconv.ParseFloat(os.Args[1], 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid x coordinate: %s\n", os.Args[1])
		os.Exit(2)
	}
	y, err := strconv.ParseFloat(os.Args[2], 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid y coordinate: %s\n", os.Args[2])
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	layout, err := cfg.GridLayout()
	if err != nil {
		log.Fatalf("Invalid layout configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := helper.Serve(ctx, x, y, layout, os.Stdout, os.Stdin); err != nil {
		log.Fatalf("Helper failed: %v", err)
	}
}
