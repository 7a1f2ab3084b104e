package gpiocdev

// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// devfsRoot is the directory scanned for GPIO character devices.
const devfsRoot = "/dev"

var (
	// ErrLineNotFound is returned by FindLine when no line on the chip
	// carries the requested name.
	ErrLineNotFound = errors.New("line not found")
	// ErrDuplicateLineName is returned by FindLine when more than one line
	// on the same chip carries the requested name, making the lookup
	// ambiguous.
	ErrDuplicateLineName = errors.New("duplicate line name")
)

// A Chip is an opened Linux GPIO character device. A computer may have
// more than one chip.
type Chip struct {
	// The name of the device as reported by the kernel.
	name string
	// path to the /dev/gpiochip* character device used for ioctl() calls.
	path  string
	label string
	// The number of lines this device supports.
	lineCount int
	// The set of Lines associated with this device.
	lines []*Line
	// The LineSets opened on this device.
	lineSets []*LineSet
	// The file descriptor to the path device.
	fd uintptr
	// File associated with the file descriptor. A reference is kept for
	// the life of the Chip so the handle isn't garbage collected.
	file *os.File
}

// ChipPaths returns the paths of all entries in the device directory that
// are GPIO character devices, in directory order.
func ChipPaths() ([]string, error) {
	entries, err := os.ReadDir(devfsRoot)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", devfsRoot, err)
	}
	var paths []string
	for _, entry := range entries {
		p := filepath.Join(devfsRoot, entry.Name())
		if IsChipDevice(p) {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

// Open opens the GPIO character device at path and reads information about
// the chip and its associated lines using the kernel ioctl() calls.
func Open(path string) (*Chip, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0400)
	if err != nil {
		return nil, fmt.Errorf("opening gpio chip %s: %w", path, err)
	}
	chip := &Chip{path: path, file: f, fd: f.Fd()}
	var info gpiochip_info
	if err = ioctl_gpiochip_info(chip.fd, &info); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("gpiochip_info %s: %w", path, err)
	}
	chip.name = bytesToString(info.name[:])
	chip.label = bytesToString(info.label[:])
	if len(chip.label) == 0 {
		chip.label = chip.name
	}
	chip.lineCount = int(info.lines)
	for offset := uint32(0); offset < info.lines; offset++ {
		var li gpio_v2_line_info
		li.offset = offset
		if err = ioctl_gpio_v2_line_info(chip.fd, &li); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("line info %s:%d: %w", path, offset, err)
		}
		chip.lines = append(chip.lines, newLine(chip, offset, bytesToString(li.name[:]), bytesToString(li.consumer[:])))
	}
	return chip, nil
}

func (chip *Chip) Name() string {
	return chip.name
}

func (chip *Chip) Path() string {
	return chip.path
}

func (chip *Chip) Label() string {
	return chip.label
}

func (chip *Chip) LineCount() int {
	return chip.lineCount
}

func (chip *Chip) Lines() []*Line {
	return chip.lines
}

func (chip *Chip) LineSets() []*LineSet {
	return chip.lineSets
}

// Close closes the file descriptor associated with the chip, along with
// any requested Lines and LineSets. Lines obtained from the chip are not
// valid once it is closed.
func (chip *Chip) Close() {
	for _, line := range chip.lines {
		if line.fd != 0 {
			line.Close()
		}
	}
	for _, lineset := range chip.lineSets {
		_ = lineset.Close()
	}
	if chip.file != nil {
		_ = chip.file.Close()
	}
	chip.file = nil
	chip.fd = 0
}

// ByName returns the Line with the given name. If not found, returns nil.
func (chip *Chip) ByName(name string) *Line {
	for _, line := range chip.lines {
		if line.name == name {
			return line
		}
	}
	return nil
}

// ByNumber returns a line by its chip line offset. Note this has NO
// RELATIONSHIP to a pin # on a board. If out of range, returns nil.
func (chip *Chip) ByNumber(number int) *Line {
	if number < 0 || number >= len(chip.lines) {
		return nil
	}
	return chip.lines[number]
}

// FindLines returns every line on the chip with the given name. Line names
// are not required to be unique, so the result may hold more than one
// entry. The returned lines are only valid until the chip is closed.
func (chip *Chip) FindLines(name string) []*Line {
	var matches []*Line
	for _, line := range chip.lines {
		if line.name == name {
			matches = append(matches, line)
		}
	}
	return matches
}

// FindLine returns the single line on the chip with the given name.
//
// It returns ErrLineNotFound when no line carries the name, and
// ErrDuplicateLineName when the name is ambiguous within the chip.
func (chip *Chip) FindLine(name string) (*Line, error) {
	matches := chip.FindLines(name)
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("chip %s, line %q: %w", chip.name, name, ErrLineNotFound)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("chip %s, line %q: %w", chip.name, name, ErrDuplicateLineName)
	}
}

// FindLine searches all GPIO chips on the device for a line with the given
// name and returns the owning chip name and the line offset of the first
// unique match. Chips are scanned in device directory order and the scan
// stops at the first chip that yields a match.
func FindLine(name string) (string, int, error) {
	paths, err := ChipPaths()
	if err != nil {
		return "", 0, err
	}
	for _, p := range paths {
		chip, err := Open(p)
		if err != nil {
			return "", 0, err
		}
		line, err := chip.FindLine(name)
		if err == nil {
			chipName, offset := chip.Name(), line.Number()
			chip.Close()
			return chipName, offset, nil
		}
		chip.Close()
		if !errors.Is(err, ErrLineNotFound) {
			return "", 0, err
		}
	}
	return "", 0, fmt.Errorf("line %q: %w", name, ErrLineNotFound)
}

func (chip *Chip) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name      string     `json:"Name"`
		Path      string     `json:"Path"`
		Label     string     `json:"Label"`
		LineCount int        `json:"LineCount"`
		Lines     []*Line    `json:"Lines"`
		LineSets  []*LineSet `json:"LineSets"`
	}{
		Name:      chip.Name(),
		Path:      chip.Path(),
		Label:     chip.Label(),
		LineCount: chip.LineCount(),
		Lines:     chip.lines,
		LineSets:  chip.lineSets})
}

// String returns the chip information, and line information, in JSON format.
func (chip *Chip) String() string {
	json, _ := json.MarshalIndent(chip, "", "    ")
	return string(json)
}

// bytesToString interprets a NUL terminated fixed size buffer as returned
// by the kernel.
func bytesToString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
