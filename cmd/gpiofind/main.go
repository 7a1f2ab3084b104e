// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// gpiofind locates the GPIO chip and line offset owning a named line.
//
// It is a port of the libgpiod gpiofind tool. On a match it prints the
// owning chip name and the line offset and exits 0. When no chip owns the
// name it exits 1 with no output.
package main

import (
	"errors"
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
	// FindLine resolves a line name to its offset within the chip,
	// enforcing uniqueness of the name.
	FindLine(name string) (int, error)
	Close()
}

// Mockable for testing.
var (
	devDir       = "/dev"
	isChipDevice = gpiocdev.IsChipDevice
	openChip     = func(path string) (chipDevice, error) {
		c, err := gpiocdev.Open(path)
		if err != nil {
			return nil, err
		}
		return realChip{c}, nil
	}
)

type realChip struct {
	*gpiocdev.Chip
}

func (c realChip) FindLine(name string) (int, error) {
	line, err := c.Chip.FindLine(name)
	if err != nil {
		return 0, err
	}
	return line.Number(), nil
}

type options struct {
	Version bool `short:"v" long:"version" description:"display the version and exit"`
	Args    struct {
		Name string `positional-arg-name:"name" description:"GPIO line name to find"`
	} `positional-args:"yes" required:"yes"`
}

// find scans the device directory for GPIO chip devices and searches each
// in turn for a line with the given name. The first chip that yields a
// match wins and later chips are never opened. A duplicate name within a
// single chip, or a classified device that fails to open, ends the run
// with an error.
func find(w io.Writer, name string) (bool, error) {
	entries, err := os.ReadDir(devDir)
	if err != nil {
		return false, err
	}
	for _, entry := range entries {
		path := filepath.Join(devDir, entry.Name())
		if !isChipDevice(path) {
			continue
		}
		chip, err := openChip(path)
		if err != nil {
			return false, err
		}
		offset, err := chip.FindLine(name)
		if err == nil {
			fmt.Fprintf(w, "%s %d\n", chip.Name(), offset)
			chip.Close()
			return true, nil
		}
		chip.Close()
		if !errors.Is(err, gpiocdev.ErrLineNotFound) {
			return false, err
		}
	}
	return false, nil
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[OPTIONS] <name>"
	if _, err := parser.Parse(); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		os.Exit(1)
	}
	if opts.Version {
		fmt.Printf("gpiofind (gpiocdev) %s\n", version)
		return
	}
	found, err := find(os.Stdout, opts.Args.Name)
	if err != nil {
		fmt.Fprintln(os.Stderr, "gpiofind:", err)
		os.Exit(1)
	}
	if !found {
		os.Exit(1)
	}
}
