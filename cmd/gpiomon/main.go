// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// gpiomon waits for edge events on a GPIO line and prints them.
//
// It is a port of the libgpiod gpiomon tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"golang.org/x/sys/unix"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/gpiocdev"
)

var version = "undefined"

type options struct {
	ActiveLow bool   `short:"l" long:"active-low" description:"set the line active state to low"`
	NumEvents uint   `short:"n" long:"num-events" value-name:"NUM" description:"exit after processing NUM events"`
	Silent    bool   `short:"s" long:"silent" description:"don't print event info"`
	Rising    bool   `short:"r" long:"rising-edge" description:"only process rising edge events"`
	Falling   bool   `short:"f" long:"falling-edge" description:"only process falling edge events"`
	Format    string `short:"F" long:"format" value-name:"FMT" description:"specify custom output format"`
	Version   bool   `short:"v" long:"version" description:"display the version and exit"`
	Args      struct {
		Chip   string `positional-arg-name:"chip" description:"GPIO chip name or path"`
		Offset uint32 `positional-arg-name:"offset" description:"line offset within the chip"`
	} `positional-args:"yes" required:"yes"`
}

// eventSource is the part of gpiocdev.Line the monitor loop consumes.
type eventSource interface {
	WaitForEvent(timeout time.Duration) (gpiocdev.Event, error)
}

// watchedEdge returns the kernel edge detection to request. With neither
// or both of -r/-f, both edges are watched.
func watchedEdge(opts *options) gpio.Edge {
	switch {
	case opts.Rising && !opts.Falling:
		return gpio.RisingEdge
	case opts.Falling && !opts.Rising:
		return gpio.FallingEdge
	default:
		return gpio.BothEdges
	}
}

// monitor reads events from src until ctx is canceled or, when NumEvents
// is set, that many events have been processed.
func monitor(ctx context.Context, w io.Writer, src eventSource, opts *options) error {
	var done uint
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		evt, err := src.WaitForEvent(time.Second)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}
			return err
		}
		if !opts.Silent {
			printEvent(w, evt, opts.Format)
		}
		done++
		if opts.NumEvents > 0 && done >= opts.NumEvents {
			return nil
		}
	}
}

func printEvent(w io.Writer, evt gpiocdev.Event, format string) {
	sec := int64(evt.Timestamp / time.Second)
	nsec := int64(evt.Timestamp % time.Second)
	if len(format) != 0 {
		fmt.Fprintln(w, expandFormat(format, evt, sec, nsec))
		return
	}
	// The leading space keeps the two event types aligned.
	evtype := " RISING EDGE"
	if evt.Edge == gpio.FallingEdge {
		evtype = "FALLING EDGE"
	}
	fmt.Fprintf(w, "event: %s offset: %d timestamp: [%8d.%09d]\n", evtype, evt.Offset, sec, nsec)
}

// expandFormat substitutes the gpiomon format specifiers: %o line offset,
// %e event type (0 falling, 1 rising), %s seconds, %n nanoseconds and %%
// a literal %. Unknown specifiers are copied through unchanged.
func expandFormat(format string, evt gpiocdev.Event, sec, nsec int64) string {
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i+1 == len(format) {
			b.WriteByte(c)
			continue
		}
		i++
		switch format[i] {
		case 'o':
			fmt.Fprintf(&b, "%d", evt.Offset)
		case 'e':
			if evt.Edge == gpio.FallingEdge {
				b.WriteByte('0')
			} else {
				b.WriteByte('1')
			}
		case 's':
			fmt.Fprintf(&b, "%d", sec)
		case 'n':
			fmt.Fprintf(&b, "%d", nsec)
		case '%':
			b.WriteByte('%')
		default:
			b.WriteByte('%')
			b.WriteByte(format[i])
		}
	}
	return b.String()
}

func run(opts *options) error {
	path := opts.Args.Chip
	if !strings.ContainsRune(path, '/') {
		path = filepath.Join("/dev", path)
	}
	chip, err := gpiocdev.Open(path)
	if err != nil {
		return err
	}
	defer chip.Close()
	line := chip.ByNumber(int(opts.Args.Offset))
	if line == nil {
		return fmt.Errorf("chip %s: offset %d out of range", chip.Name(), opts.Args.Offset)
	}
	line.SetActiveLow(opts.ActiveLow)
	if err = line.In(gpio.PullNoChange, watchedEdge(opts)); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, unix.SIGTERM)
	defer stop()
	return monitor(ctx, os.Stdout, line, opts)
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[OPTIONS] <chip> <offset>"
	if _, err := parser.Parse(); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		os.Exit(1)
	}
	if opts.Version {
		fmt.Printf("gpiomon (gpiocdev) %s\n", version)
		return
	}
	if err := run(&opts); err != nil {
		fmt.Fprintln(os.Stderr, "gpiomon:", err)
		os.Exit(1)
	}
}
