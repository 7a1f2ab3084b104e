// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// gpiodetect lists all GPIO chips present on the device, their labels and
// number of lines.
//
// It is a port of the libgpiod gpiodetect tool.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"

	"periph.io/x/gpiocdev"
)

var version = "undefined"

// chipDevice is the part of gpiocdev.Chip the tool consumes.
type chipDevice interface {
	Name() string
	Label() string
	LineCount() int
	Close()
}

// Mockable for testing.
var (
	devDir       = "/dev"
	isChipDevice = gpiocdev.IsChipDevice
	openChip     = func(path string) (chipDevice, error) { return gpiocdev.Open(path) }
)

type options struct {
	Version bool `short:"v" long:"version" description:"display the version and exit"`
}

// detect scans the device directory, opens every entry recognized as a
// GPIO chip device and prints one line per chip. A classified device that
// fails to open ends the run.
func detect(w io.Writer) error {
	entries, err := os.ReadDir(devDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		path := filepath.Join(devDir, entry.Name())
		if !isChipDevice(path) {
			continue
		}
		chip, err := openChip(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s [%s] (%d lines)\n", chip.Name(), chip.Label(), chip.LineCount())
		chip.Close()
	}
	return nil
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[OPTIONS]"
	if _, err := parser.Parse(); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		os.Exit(1)
	}
	if opts.Version {
		fmt.Printf("gpiodetect (gpiocdev) %s\n", version)
		return
	}
	if err := detect(os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "gpiodetect:", err)
		os.Exit(1)
	}
}
