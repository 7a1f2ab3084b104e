//go:build linux

// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.
//
// Thin wrappers around the raw syscalls so that the rest of the package
// builds on every OS. The GPIO character device only exists on Linux.

package gpiocdev

import (
	"syscall"

	"golang.org/x/sys/unix"
)

func ioctl_call(fd, op, arg uintptr) syscall.Errno {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, op, arg)
	return errno
}

func syscall_close_wrapper(fd int) error {
	return unix.Close(fd)
}

func syscall_nonblock_wrapper(fd int, nonblocking bool) error {
	return unix.SetNonblock(fd, nonblocking)
}
