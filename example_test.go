package gpiocdev_test

// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

import (
	"errors"
	"fmt"
	"log"

	"periph.io/x/gpiocdev"
)

func Example() {
	// Enumerate the GPIO chips present on the device, the way the
	// gpiodetect tool does.
	paths, err := gpiocdev.ChipPaths()
	if err != nil {
		log.Fatal(err)
	}
	for _, path := range paths {
		chip, err := gpiocdev.Open(path)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%s [%s] (%d lines)\n", chip.Name(), chip.Label(), chip.LineCount())
		chip.Close()
	}

	// Locate a line by name across all chips.
	chipName, offset, err := gpiocdev.FindLine("GPIO5")
	if errors.Is(err, gpiocdev.ErrLineNotFound) {
		log.Fatal("GPIO5 is not known on this device")
	} else if err != nil {
		log.Fatal(err)
	}
	fmt.Println(chipName, offset)
}
