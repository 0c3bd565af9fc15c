package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/storeit-dev/storeit/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.New().ExecuteContext(ctx); err != nil {
		log.Printf("failed to execute command: %v", err)
		os.Exit(1)
	}
}
