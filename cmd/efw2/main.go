// Command efw2 turns a wage file into an SSA EFW2 W-2 submission file.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/mminer237/efw2-maker/internal/app"
	"github.com/mminer237/efw2-maker/internal/config"
	"github.com/mminer237/efw2-maker/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := pflag.NewFlagSet("efw2", pflag.ContinueOnError)
	var opts app.Options
	fs.StringVarP(&opts.WageFile, "file", "f", "", "wage file to encode (.csv or .xlsx)")
	configPath := fs.StringP("config", "c", "", "config file (default efw2.yaml next to the executable)")
	fs.IntVar(&opts.TaxYear, "year", 0, "tax year (default previous calendar year)")
	fs.StringVar(&opts.ResubWFID, "resub", "", "WFID of the rejected file this one resubmits")
	fs.BoolVar(&opts.FinalYear, "final", false, "mark this as the employer's final year of filing")
	fs.StringVarP(&opts.Out, "out", "o", "", "output file (default stdout)")
	fs.StringVar(&opts.PDF, "pdf", "", "also write a PDF summary to this file")
	fs.StringVar(&opts.Archive, "archive", "", "SQLite database to archive the filing in")
	fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&opts.Notes, "notes", "", "free-form notes stored with the archived filing")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 1
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "efw2: load .env: %v\n", err)
	}

	conf, err := config.Load(*configPath, fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "efw2: %v\n", err)
		return 1
	}
	logger, err := logging.New(conf.Logging, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "efw2: %v\n", err)
		return 1
	}
	defer logger.Sync()

	if opts.WageFile == "" {
		logger.Error("no wage file given; use --file", zap.String("op", "main"))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := app.New(conf, logger).Run(ctx, opts, os.Stdout); err != nil {
		logger.Error("filing failed", zap.String("op", "main"), zap.Error(err))
		return 1
	}
	return 0
}
