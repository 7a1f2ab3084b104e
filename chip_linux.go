//go:build linux

// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpiocdev

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// IsChipDevice reports whether path refers to a GPIO character device.
//
// A path qualifies when it is a character device whose major:minor pair
// matches the device number the gpio subsystem exports for it under
// /sys/bus/gpio/devices. The cross-check filters out look-alike device
// names and stale nodes left behind after a chip was removed.
func IsChipDevice(path string) bool {
	fi, err := os.Lstat(path)
	if err != nil || fi.Mode()&os.ModeCharDevice == 0 {
		return false
	}
	var st unix.Stat_t
	if err = unix.Lstat(path, &st); err != nil {
		return false
	}
	sysfsdev, err := os.ReadFile(fmt.Sprintf("/sys/bus/gpio/devices/%s/dev", fi.Name()))
	if err != nil {
		return false
	}
	devstr := fmt.Sprintf("%d:%d", unix.Major(uint64(st.Rdev)), unix.Minor(uint64(st.Rdev)))
	return strings.TrimSpace(string(sysfsdev)) == devstr
}
