package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/mminer237/efw2-maker/internal/adapters/efw2"
	"github.com/mminer237/efw2-maker/internal/adapters/pdf"
	sqliteadapter "github.com/mminer237/efw2-maker/internal/adapters/sqlite"
	"github.com/mminer237/efw2-maker/internal/config"
	"github.com/mminer237/efw2-maker/internal/handlers"
	"github.com/mminer237/efw2-maker/internal/logging"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "error loading .env file: %v\n", err)
	}

	fs := pflag.NewFlagSet("efw2-server", pflag.ExitOnError)
	configPath := fs.StringP("config", "c", "", "config file (default efw2.yaml next to the executable)")
	fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.Parse(os.Args[1:])

	conf, err := config.Load(*configPath, fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "efw2-server: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(conf.Logging, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "efw2-server: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	dsn := os.Getenv("DB_PATH")
	if dsn == "" {
		dsn = conf.Archive.Path
	}
	if dsn == "" {
		dsn = "efw2.db"
	}
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := sqliteadapter.New(dsn)
	if err != nil {
		logger.Fatal("failed to open database", zap.String("db", dsn), zap.Error(err))
	}
	defer repo.Close()
	if err := repo.Migrate(ctx); err != nil {
		logger.Fatal("failed to migrate database", zap.String("db", dsn), zap.Error(err))
	}

	variant, err := conf.Variant()
	if err != nil {
		logger.Fatal("bad layout", zap.Error(err))
	}
	gen := efw2.MustNew(0, efw2.WithVariant(variant), efw2.WithLogger(logger))
	h := handlers.New(repo, gen, pdf.Writer{}, conf.EmployerConfig(), logger)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdown)
	}()

	logger.Info("EFW2 server running",
		zap.String("op", "main"),
		zap.String("url", "http://localhost:"+port),
		zap.String("db", dsn),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
