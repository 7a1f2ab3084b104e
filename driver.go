package gpiocdev

// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path"
	"sort"
	"strings"

	"periph.io/x/conn/v3/driver/driverreg"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// Chips is the set of GPIO chips found on the running device. It is
// populated by the driver registered with driverreg, so call Init() first.
var Chips []*Chip

// The consumer name to use for line requests. Initialized in init().
var consumer []byte

// Init calls driverreg.Init() and returns it as-is.
//
// The only difference is that by calling gpiocdev.Init(), you are
// guaranteed to have the GPIO character device driver implemented in this
// library to be implicitly loaded.
func Init() (*driverreg.State, error) {
	return driverreg.Init()
}

// driverGPIO implements periph.Driver.
type driverGPIO struct {
	_ string
}

func (d *driverGPIO) String() string {
	return "gpiocdev"
}

func (d *driverGPIO) Prerequisites() []string {
	return nil
}

func (d *driverGPIO) After() []string {
	return nil
}

// Init discovers the GPIO character devices present on the host and
// registers their named lines with gpio/gpioreg.
func (d *driverGPIO) Init() (bool, error) {
	paths, err := ChipPaths()
	if err != nil {
		return true, fmt.Errorf("gpiocdev: %w", err)
	}
	if len(paths) == 0 {
		return false, errors.New("no GPIO chips found")
	}
	var chips []*Chip
	for _, p := range paths {
		chip, err := Open(p)
		if err == nil {
			chips = append(chips, chip)
		} else {
			log.Println("gpiocdev.driverGPIO.Init()", err)
		}
	}
	// Sort the chips so that those labeled with pinctrl- (a Pi kernel
	// standard) come first. Otherwise, sort them by label. This _should_
	// protect us from any random changes in chip naming/ordering.
	sort.Slice(chips, func(i, j int) bool {
		I := chips[i]
		J := chips[j]
		if strings.HasPrefix(I.Label(), "pinctrl-") {
			if strings.HasPrefix(J.Label(), "pinctrl-") {
				return I.Label() < J.Label()
			}
			return true
		} else if strings.HasPrefix(J.Label(), "pinctrl-") {
			return false
		}
		return I.Label() < J.Label()
	})

	mName := make(map[string]struct{})
	// Get a list of already registered GPIO line names.
	registeredPins := make(map[string]struct{})
	for _, pin := range gpioreg.All() {
		registeredPins[pin.Name()] = struct{}{}
	}

	for _, chip := range chips {
		// On a Pi, gpiochip0 is also symlinked to gpiochip4, checking the
		// map ensures we don't register the chip twice.
		if _, found := mName[chip.Name()]; found {
			chip.Close()
			continue
		}
		Chips = append(Chips, chip)
		mName[chip.Name()] = struct{}{}
		for _, line := range chip.lines {
			// Skip lines without some sort of reasonable name.
			if len(line.name) == 0 || line.name == "_" || line.name == "-" {
				continue
			}
			// On the Pi5, there are at least two chips that export
			// "2712_WAKE" as the line name. Disambiguate duplicates with
			// the chip name.
			if _, ok := registeredPins[line.Name()]; ok {
				line.name = chip.Name() + "-" + line.Name()
				if _, found := registeredPins[line.Name()]; found {
					// Still not unique. Skip it.
					continue
				}
			}
			registeredPins[line.Name()] = struct{}{}
			if err = gpioreg.Register(line); err != nil {
				log.Println("chip", chip.Name(), " gpioreg.Register(line) ", line, " returned ", err)
			}
		}
	}
	return len(Chips) > 0, nil
}

var drvGPIO driverGPIO

func init() {
	// Init our consumer name. It's used when a line is requested, and
	// allows utility programs like gpioinfo to find out who has a line
	// open.
	fname := path.Base(os.Args[0])
	s := fmt.Sprintf("%s@%d", fname, os.Getpid())
	charBytes := []byte(s)
	if len(charBytes) >= _GPIO_MAX_NAME_SIZE {
		charBytes = charBytes[:_GPIO_MAX_NAME_SIZE-1]
	}
	consumer = charBytes

	driverreg.MustRegister(&drvGPIO)
}
