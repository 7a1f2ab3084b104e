//go:build !linux

// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.
//
// Off Linux only the dummy chip exists, so no real file descriptors are
// ever opened and the wrappers are stubs.

package gpiocdev

import (
	"syscall"
)

func ioctl_call(fd, op, arg uintptr) syscall.Errno {
	return syscall.ENOTSUP
}

func syscall_close_wrapper(fd int) error {
	return nil
}

func syscall_nonblock_wrapper(fd int, nonblocking bool) error {
	return nil
}
