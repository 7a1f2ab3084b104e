package gpiocdev

// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.
//
// Tests for the LineSet request configuration. IO against a live LineSet
// needs hardware with jumpered pins, so the tests here stick to the
// request structures handed to the kernel.

import (
	"fmt"
	"testing"

	"periph.io/x/conn/v3/gpio"
)

func TestLineSetConfigAddOverrides(t *testing.T) {
	cfg := LineSetConfig{
		Lines:            []string{"A", "B"},
		DefaultDirection: LineOutput,
		DefaultEdge:      gpio.NoEdge,
		DefaultPull:      gpio.PullNoChange,
	}
	if err := cfg.AddOverrides(LineInput, gpio.RisingEdge, gpio.PullUp, "C"); err != nil {
		t.Fatalf("AddOverrides() %s", err)
	}
	if len(cfg.Lines) != 3 || cfg.Lines[2] != "C" {
		t.Errorf("override line C was not dynamically added: %v", cfg.Lines)
	}
	if len(cfg.Overrides) != 1 {
		t.Fatalf("expected 1 override, found %d", len(cfg.Overrides))
	}

	for i := 1; i < _GPIO_V2_LINE_NUM_ATTRS_MAX; i++ {
		if err := cfg.AddOverrides(LineInput, gpio.NoEdge, gpio.PullNoChange, fmt.Sprintf("extra%d", i)); err != nil {
			t.Fatalf("AddOverrides() #%d %s", i, err)
		}
	}
	if err := cfg.AddOverrides(LineInput, gpio.NoEdge, gpio.PullNoChange, "toomany"); err == nil {
		t.Errorf("expected an error adding override #%d", _GPIO_V2_LINE_NUM_ATTRS_MAX+1)
	}
}

func TestLineSetRequestStruct(t *testing.T) {
	cfg := LineSetConfig{
		Lines:            []string{"A", "B"},
		DefaultDirection: LineOutput,
		DefaultEdge:      gpio.NoEdge,
		DefaultPull:      gpio.PullNoChange,
	}
	if err := cfg.AddOverrides(LineInput, gpio.RisingEdge, gpio.PullUp, "B"); err != nil {
		t.Fatalf("AddOverrides() %s", err)
	}
	lr := cfg.getLineSetRequestStruct([]uint32{4, 5})
	if lr.num_lines != 2 {
		t.Errorf("num_lines = %d, expected 2", lr.num_lines)
	}
	if lr.offsets[0] != 4 || lr.offsets[1] != 5 {
		t.Errorf("offsets = %d,%d, expected 4,5", lr.offsets[0], lr.offsets[1])
	}
	if lr.config.flags != _GPIO_V2_LINE_FLAG_OUTPUT {
		t.Errorf("default flags = %#x, expected output", lr.config.flags)
	}
	if lr.config.num_attrs != 1 {
		t.Fatalf("num_attrs = %d, expected 1", lr.config.num_attrs)
	}
	attr := lr.config.attrs[0]
	if attr.mask != 0x02 {
		t.Errorf("override mask = %#x, expected 0x02", attr.mask)
	}
	if attr.attr.id != _GPIO_V2_LINE_ATTR_ID_FLAGS {
		t.Errorf("override attr id = %d, expected flags", attr.attr.id)
	}
	expected := _GPIO_V2_LINE_FLAG_INPUT | _GPIO_V2_LINE_FLAG_EDGE_RISING | _GPIO_V2_LINE_FLAG_BIAS_PULL_UP
	if attr.attr.value != expected {
		t.Errorf("override flags = %#x, expected %#x", attr.attr.value, expected)
	}
	if lr.consumer[0] == 0 {
		t.Error("consumer name was not copied into the request")
	}
}

func TestLineSetFromConfigUnknownLine(t *testing.T) {
	chip := fakeChip("A", "B")
	cfg := LineSetConfig{
		Lines:            []string{"A", "nonexistent"},
		DefaultDirection: LineOutput,
	}
	if _, err := chip.LineSetFromConfig(&cfg); err == nil {
		t.Error("LineSetFromConfig() with an unknown line should fail")
	}
}

func TestNewLineSetLineOverride(t *testing.T) {
	chip := fakeChip("A", "B")
	cfg := LineSetConfig{
		Lines:            []string{"A", "B"},
		DefaultDirection: LineOutput,
		DefaultEdge:      gpio.NoEdge,
		DefaultPull:      gpio.PullNoChange,
	}
	if err := cfg.AddOverrides(LineInput, gpio.RisingEdge, gpio.PullUp, "B"); err != nil {
		t.Fatalf("AddOverrides() %s", err)
	}
	lsl := chip.newLineSetLine(0, 0, &cfg)
	if lsl.Direction() != LineOutput || lsl.Edge() != gpio.NoEdge || lsl.Pull() != gpio.PullNoChange {
		t.Errorf("line A should carry the defaults: %s", lsl)
	}
	lsl = chip.newLineSetLine(1, 1, &cfg)
	if lsl.Direction() != LineInput {
		t.Error("line B override direction != LineInput")
	}
	if lsl.Edge() != gpio.RisingEdge {
		t.Error("line B override edge != gpio.RisingEdge")
	}
	if lsl.Pull() != gpio.PullUp {
		t.Error("line B override pull != gpio.PullUp")
	}
	if lsl.Offset() != 1 || lsl.Number() != 1 {
		t.Errorf("line B offset/number = %d/%d, expected 1/1", lsl.Offset(), lsl.Number())
	}
}
