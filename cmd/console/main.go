package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog/log"
	"github.com/smartsales365/admin-console/apiclient"
	"github.com/smartsales365/admin-console/auth"
	"github.com/smartsales365/admin-console/internal/config"
	"github.com/smartsales365/admin-console/internal/logging"
	"github.com/smartsales365/admin-console/server"
	"github.com/smartsales365/admin-console/session"
	"github.com/smartsales365/admin-console/session/filestore"
	"github.com/smartsales365/admin-console/session/memstore"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("console stopped with error")
	}
	log.Info().Msg("console stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	if err := logging.Setup(c.GetEnv(), c.GetLogLevel(), c.GetLogFile()); err != nil {
		return fmt.Errorf("logging.Setup: %w", err)
	}
	displayAppname(c.GetAppName())

	store, err := openSessionStore(c)
	if err != nil {
		return err
	}

	client, err := apiclient.NewFromConfig(c, store)
	if err != nil {
		return fmt.Errorf("apiclient.NewFromConfig: %w", err)
	}

	provider, err := auth.NewProvider(client, store)
	if err != nil {
		return fmt.Errorf("auth.NewProvider: %w", err)
	}
	unbind := provider.Bind(client)
	defer unbind()

	handler, err := server.New(c, provider, client)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	srv := &http.Server{Addr: c.GetPort(), Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	base, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(base)

	// The guard serves the loading page until this finishes.
	g.Go(func() error {
		provider.Init(ctx)
		return nil
	})

	g.Go(func() error {
		return listenAndServe(srv, client.BaseURL())
	})

	g.Go(func() error {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(stop)

		select {
		case sig := <-stop:
			log.Info().Str("signal", sig.String()).Msg("shutting down")
		case <-ctx.Done():
		}
		cancel()
		return shutdown(srv)
	})

	return g.Wait()
}

func openSessionStore(c config.SessionConfig) (session.Store, error) {
	if c.GetSessionStore() == config.SessionStoreMemory {
		log.Info().Msg("session kept in memory only")
		return memstore.New(), nil
	}
	store, err := filestore.Open(c.GetSessionFile())
	if err != nil {
		return nil, fmt.Errorf("filestore.Open: %w", err)
	}
	log.Info().Str("file", store.Path()).Msg("session file")
	return store, nil
}

func listenAndServe(srv *http.Server, backend string) error {
	log.Info().Str("addr", srv.Addr).Str("backend", backend).Msg("console listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
