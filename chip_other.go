//go:build !linux

// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.
//
// The GPIO character device only exists on Linux. Provide a dummy chip so
// that dependent code still has something to work with.

package gpiocdev

// IsChipDevice reports whether path refers to a GPIO character device.
// Always false off Linux.
func IsChipDevice(path string) bool {
	return false
}

func init() {
	if len(Chips) == 0 {
		makeDummyChip()
	}
}
