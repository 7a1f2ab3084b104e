// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/gpiocdev"
)

// fakeSource replays a fixed list of events, then times out forever.
type fakeSource struct {
	events []gpiocdev.Event
}

func (s *fakeSource) WaitForEvent(timeout time.Duration) (gpiocdev.Event, error) {
	if len(s.events) == 0 {
		return gpiocdev.Event{}, os.ErrDeadlineExceeded
	}
	evt := s.events[0]
	s.events = s.events[1:]
	return evt, nil
}

func TestWatchedEdge(t *testing.T) {
	tests := []struct {
		rising   bool
		falling  bool
		expected gpio.Edge
	}{
		{false, false, gpio.BothEdges},
		{true, false, gpio.RisingEdge},
		{false, true, gpio.FallingEdge},
		{true, true, gpio.BothEdges},
	}
	for _, test := range tests {
		opts := &options{Rising: test.rising, Falling: test.falling}
		if edge := watchedEdge(opts); edge != test.expected {
			t.Errorf("watchedEdge(rising=%t falling=%t) = %d, expected %d", test.rising, test.falling, edge, test.expected)
		}
	}
}

func TestExpandFormat(t *testing.T) {
	evt := gpiocdev.Event{
		Timestamp: 12*time.Second + 345,
		Edge:      gpio.RisingEdge,
		Offset:    4,
	}
	tests := []struct {
		format   string
		expected string
	}{
		{"%o %e %s %n", "4 1 12 345"},
		{"offset=%o", "offset=4"},
		{"100%%", "100%"},
		{"trailing%", "trailing%"},
		{"%x", "%x"},
		{"", ""},
	}
	for _, test := range tests {
		sec := int64(evt.Timestamp / time.Second)
		nsec := int64(evt.Timestamp % time.Second)
		if s := expandFormat(test.format, evt, sec, nsec); s != test.expected {
			t.Errorf("expandFormat(%q) = %q, expected %q", test.format, s, test.expected)
		}
	}
}

func TestExpandFormatFallingEdge(t *testing.T) {
	evt := gpiocdev.Event{Edge: gpio.FallingEdge, Offset: 2}
	if s := expandFormat("%e", evt, 0, 0); s != "0" {
		t.Errorf("expandFormat(%%e) = %q, expected 0", s)
	}
}

func TestPrintEventDefaultFormat(t *testing.T) {
	var out strings.Builder
	printEvent(&out, gpiocdev.Event{Timestamp: 12*time.Second + 345, Edge: gpio.RisingEdge, Offset: 4}, "")
	expected := "event:  RISING EDGE offset: 4 timestamp: [      12.000000345]\n"
	if out.String() != expected {
		t.Errorf("printEvent() = %q, expected %q", out.String(), expected)
	}
	out.Reset()
	printEvent(&out, gpiocdev.Event{Timestamp: 1, Edge: gpio.FallingEdge, Offset: 17}, "")
	expected = "event: FALLING EDGE offset: 17 timestamp: [       0.000000001]\n"
	if out.String() != expected {
		t.Errorf("printEvent() = %q, expected %q", out.String(), expected)
	}
}

func TestMonitorNumEvents(t *testing.T) {
	src := &fakeSource{events: []gpiocdev.Event{
		{Timestamp: time.Second, Edge: gpio.RisingEdge, Offset: 3},
		{Timestamp: 2 * time.Second, Edge: gpio.FallingEdge, Offset: 3},
		{Timestamp: 3 * time.Second, Edge: gpio.RisingEdge, Offset: 3},
	}}
	opts := &options{NumEvents: 2}
	var out strings.Builder
	if err := monitor(context.Background(), &out, src, opts); err != nil {
		t.Fatalf("monitor() %s", err)
	}
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Errorf("monitor() printed %d events, expected 2: %q", len(lines), out.String())
	}
	// The third event stays queued.
	if len(src.events) != 1 {
		t.Errorf("monitor() left %d events queued, expected 1", len(src.events))
	}
}

func TestMonitorSilent(t *testing.T) {
	src := &fakeSource{events: []gpiocdev.Event{
		{Edge: gpio.RisingEdge}, {Edge: gpio.FallingEdge},
	}}
	opts := &options{NumEvents: 2, Silent: true}
	var out strings.Builder
	if err := monitor(context.Background(), &out, src, opts); err != nil {
		t.Fatalf("monitor() %s", err)
	}
	if out.Len() != 0 {
		t.Errorf("silent monitor produced output: %q", out.String())
	}
}

func TestMonitorCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &fakeSource{}
	var out strings.Builder
	if err := monitor(ctx, &out, src, &options{}); err != nil {
		t.Fatalf("monitor() %s", err)
	}
	if out.Len() != 0 {
		t.Errorf("canceled monitor produced output: %q", out.String())
	}
}

func TestMonitorCustomFormat(t *testing.T) {
	src := &fakeSource{events: []gpiocdev.Event{
		{Timestamp: 5*time.Second + 10, Edge: gpio.FallingEdge, Offset: 9},
	}}
	opts := &options{NumEvents: 1, Format: "%o:%e:%s.%n"}
	var out strings.Builder
	if err := monitor(context.Background(), &out, src, opts); err != nil {
		t.Fatalf("monitor() %s", err)
	}
	if out.String() != "9:0:5.10\n" {
		t.Errorf("monitor() output %q, expected %q", out.String(), "9:0:5.10\n")
	}
}
