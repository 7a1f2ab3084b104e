// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package gpiocdev provides access to GPIO chips and lines through the
// Linux character device (/dev/gpiochip*) using the v2 ioctl API.
//
// https://docs.kernel.org/userspace-api/gpio/index.html
//
// Chips are discovered with ChipPaths()/IsChipDevice() and opened with
// Open(). An opened Chip exposes its lines, which implement
// periph.io/x/conn/v3/gpio.PinIO. Lines can also be resolved through
// gpio/gpioreg after calling Init().
//
// Chip provides a LineSet feature that allows you to atomically
// read/write multiple GPIO lines as a single operation.
//
// The cmd/ directory contains gpiodetect, gpiofind and gpiomon, ports of
// the corresponding libgpiod tools built on this package.
package gpiocdev
