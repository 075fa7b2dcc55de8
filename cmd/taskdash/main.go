// Package main is the entry point for the taskdash CLI.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"taskdash/internal/backend/restapi"
	"taskdash/internal/cli"
	"taskdash/internal/commands"
	"taskdash/internal/config"
	"taskdash/internal/session"
	"taskdash/internal/storage"
	"taskdash/internal/taskcache"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, openEnv)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}

// openEnv wires the cookie jar, session, API client and task cache.
// The API client draws its bearer token from the session on every request,
// so a login or logout during the run takes effect immediately.
func openEnv(ctx context.Context, cfg *config.Config, logger *log.Logger) (*commands.Env, error) {
	if err := cfg.EnsureDir(); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}
	jar, err := storage.Open(cfg.SessionPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	anon, err := restapi.New(cfg.APIURL, nil, restapi.WithTimeout(cfg.Timeout))
	if err != nil {
		jar.Close()
		return nil, err
	}

	store := session.Open(ctx, jar, anon, session.WithLogger(logger))
	api := anon.Authorized(store)
	cache := taskcache.New(api, taskcache.WithLogger(logger))

	return commands.NewEnv(store, cache, api, logger, jar), nil
}
