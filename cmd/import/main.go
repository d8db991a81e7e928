// Command import loads a restaurants dump into the configured store.
//
//	import [-batch 500] restaurants.json
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"restaurant_map/internal/config"
	"restaurant_map/internal/importer"
	"restaurant_map/internal/logger"
	"restaurant_map/internal/store"
)

func main() {
	batch := flag.Int("batch", importer.DefaultBatchSize, "records per bulk write")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-batch N] <file|->\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	logger.Setup(logger.Options{File: cfg.Log.File, Level: cfg.Log.Level, Stdout: true})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var in io.Reader = os.Stdin
	if path := flag.Arg(0); path != "-" {
		f, err := os.Open(path)
		if err != nil {
			logrus.WithError(err).Fatal("cannot open input")
		}
		defer f.Close()
		in = f
	}

	st, err := store.Open(ctx, cfg)
	if err != nil {
		logrus.WithError(err).WithField("driver", cfg.StoreDriver).Fatal("failed to open store")
	}

	res, err := importer.New(st, *batch).Run(ctx, in)
	st.Close()
	fields := logrus.Fields{"read": res.Read, "imported": res.Imported, "skipped": res.Skipped}
	if err != nil {
		logrus.WithError(err).WithFields(fields).Error("import aborted")
		os.Exit(1)
	}
	logrus.WithFields(fields).Info("import finished")
}
