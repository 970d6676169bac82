// cmd/pathreplay/main.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// pathreplay replays the aircraft tracks in a scenario file against their
// paths, resolving positions to along-path distance and course or
// distances to position and course.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/mmp/pathtrack/log"
	"github.com/mmp/pathtrack/nav"
	"github.com/mmp/pathtrack/replay"
	"github.com/mmp/pathtrack/util"
)

var (
	scenarioFilename = flag.String("scenario", "", "filename of JSON file with a replay scenario")
	logLevel         = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir           = flag.String("logdir", "", "log file directory")
	tolerance        = flag.String("tolerance", "standard", "default cross-track tolerance: tight, standard, capture, or a distance in nm")
	outputFilename   = flag.String("output", "", "write the replay results to this file as zstd-compressed msgpack")
	workers          = flag.Int("workers", 0, "maximum number of aircraft to replay concurrently (0 = number of CPUs)")
	quiet            = flag.Bool("quiet", false, "don't print the replay results")
	cpuprofile       = flag.String("cpuprofile", "", "write CPU profile to file")
	memprofile       = flag.String("memprofile", "", "write memory profile to this file")
	navLog           = flag.Bool("navlog", false, "enable navigation logging")
	navLogCategories = flag.String("navlog-categories", "all", "navigation log categories (comma-separated: index,passed,path,projection,overrun)")
	navLogCallsign   = flag.String("navlog-callsign", "", "filter navigation logs to only show this callsign (empty = show all)")
)

func main() {
	flag.Parse()

	if *scenarioFilename == "" {
		fmt.Fprintf(os.Stderr, "usage: pathreplay -scenario <file.json> [options]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	lg := log.New(*logLevel, *logDir)
	nav.InitNavLog(*navLog, *navLogCategories, *navLogCallsign)

	profiler, err := util.CreateProfiler(*cpuprofile, *memprofile)
	if err != nil {
		lg.Errorf("%v", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer profiler.Cleanup()

	if err := run(lg); err != nil {
		lg.Errorf("%v", err)
		fmt.Fprintln(os.Stderr, err)
		profiler.Cleanup()
		os.Exit(1)
	}
}

func run(lg *log.Logger) error {
	tol, err := replay.ParseTolerance(*tolerance)
	if err != nil {
		return err
	}

	var e util.ErrorLogger
	scenario := replay.LoadScenario(*scenarioFilename, &e)
	if e.HaveErrors() {
		e.PrintErrors(os.Stderr, lg)
		return fmt.Errorf("%s: invalid scenario", *scenarioFilename)
	}
	lg.Info("loaded scenario", slog.String("name", scenario.Name), slog.Int("paths", len(scenario.Paths)),
		slog.Int("aircraft", len(scenario.Aircraft)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := replay.Run(ctx, scenario, replay.Options{
		Tolerance: tol,
		Workers:   *workers,
		Logger:    lg,
	})
	if err != nil {
		return err
	}

	if !*quiet {
		result.Print(os.Stdout)
	}

	if *outputFilename != "" {
		f, err := os.Create(*outputFilename)
		if err != nil {
			return err
		}
		if err := result.Save(f); err != nil {
			f.Close()
			return fmt.Errorf("%s: %w", *outputFilename, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		lg.Info("wrote replay results", slog.String("filename", *outputFilename))
	}

	return nil
}
