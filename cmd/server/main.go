package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"gtdone/internal/config"
	"gtdone/internal/project"
	"gtdone/internal/server"
	"gtdone/internal/task"
	"gtdone/internal/watch"
)

func main() {
	cfg, err := config.Load("gtdone.yml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := log.Default()

	handler, app, err := server.Build(server.Options{
		Config:  cfg,
		DataDir: cfg.Server.DataDir,
		Logger:  logger,
	})
	if err != nil {
		log.Fatalf("build server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: handler,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Printf("gtdone listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.Server.WatchDataDir {
		watcher := watch.New(cfg.Server.DataDir, logger,
			app.TaskRepo.(*task.FileRepo),
			app.ProjectRepo.(*project.FileRepo),
			app.ContextRepo,
		)
		g.Go(func() error {
			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Fatalf("gtdone: %v", err)
	}
}
