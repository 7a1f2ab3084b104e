// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeChip struct {
	name   string
	label  string
	lines  int
	closed bool
}

func (c *fakeChip) Name() string   { return c.name }
func (c *fakeChip) Label() string  { return c.label }
func (c *fakeChip) LineCount() int { return c.lines }
func (c *fakeChip) Close()         { c.closed = true }

// mockDevDir populates a temp device directory with the given entries and
// redirects the tool's scan to it. Entries named gpiochip* are classified
// as chip devices.
func mockDevDir(t *testing.T, chips map[string]*fakeChip, entries ...string) {
	t.Helper()
	dir := t.TempDir()
	for _, name := range entries {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0600); err != nil {
			t.Fatal(err)
		}
	}
	origDir, origIs, origOpen := devDir, isChipDevice, openChip
	devDir = dir
	isChipDevice = func(path string) bool {
		return strings.HasPrefix(filepath.Base(path), "gpiochip")
	}
	openChip = func(path string) (chipDevice, error) {
		chip, ok := chips[filepath.Base(path)]
		if !ok {
			return nil, errors.New("open " + path + ": no such device")
		}
		return chip, nil
	}
	t.Cleanup(func() {
		devDir, isChipDevice, openChip = origDir, origIs, origOpen
	})
}

func TestDetectEmptyDir(t *testing.T) {
	mockDevDir(t, nil, "null", "zero", "tty0")
	var out strings.Builder
	if err := detect(&out); err != nil {
		t.Fatalf("detect() %s", err)
	}
	if out.Len() != 0 {
		t.Errorf("expected no output for a directory without chips, received %q", out.String())
	}
}

func TestDetectOutput(t *testing.T) {
	chips := map[string]*fakeChip{
		"gpiochip0": {name: "gpiochip0", label: "pinctrl-bcm2835", lines: 54},
		"gpiochip1": {name: "gpiochip1", label: "gpio-mockup-A", lines: 8},
	}
	mockDevDir(t, chips, "gpiochip0", "gpiochip1", "null", "tty0")
	var out strings.Builder
	if err := detect(&out); err != nil {
		t.Fatalf("detect() %s", err)
	}
	expected := "gpiochip0 [pinctrl-bcm2835] (54 lines)\n" +
		"gpiochip1 [gpio-mockup-A] (8 lines)\n"
	if out.String() != expected {
		t.Errorf("detect() output:\n%qexpected:\n%q", out.String(), expected)
	}
	for name, chip := range chips {
		if !chip.closed {
			t.Errorf("chip %s was not closed", name)
		}
	}
}

func TestDetectOpenFailure(t *testing.T) {
	// gpiochip2 is classified as a chip device but cannot be opened. That
	// ends the run.
	chips := map[string]*fakeChip{
		"gpiochip1": {name: "gpiochip1", label: "gpio-mockup-A", lines: 8},
	}
	mockDevDir(t, chips, "gpiochip1", "gpiochip2")
	var out strings.Builder
	if err := detect(&out); err == nil {
		t.Error("detect() should propagate the open failure")
	}
}
