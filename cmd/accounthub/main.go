package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	accounthubcmd "github.com/louisbranch/accounthub/internal/cmd/accounthub"
	platformcmd "github.com/louisbranch/accounthub/internal/platform/cmd"
)

func main() {
	cfg, err := accounthubcmd.ParseConfig(flag.CommandLine, os.Args[1:], func(key string) (string, bool) {
		value, ok := os.LookupEnv(key)
		return value, ok
	})
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[ACCOUNTS] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceAccounts, func(ctx context.Context) error {
		return accounthubcmd.Run(ctx, cfg)
	})
	if err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
