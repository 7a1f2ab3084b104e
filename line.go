package gpiocdev

// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"
)

// LineDir is the configured direction of a Line.
type LineDir uint32

const (
	LineDirNotSet LineDir = 0
	LineInput     LineDir = 1
	LineOutput    LineDir = 2
)

type Label string

var directionLabels = []Label{"NotSet", "Input", "Output"}
var pullLabels = []Label{"PullNoChange", "Float", "PullDown", "PullUp"}
var edgeLabels = []Label{"NoEdge", "RisingEdge", "FallingEdge", "BothEdges"}

// A Line represents a specific line of a GPIO chip. Line implements
// periph.io/x/conn/v3/gpio.PinIn, PinIO, and PinOut. A line is obtained by
// calling gpioreg.ByName(), or using the Chip ByName()/ByNumber()/FindLine()
// methods. A Line is only valid while its owning Chip remains open.
type Line struct {
	// The chip this line belongs to.
	chip *Chip
	// The offset of this line on the chip. Note that this has NO
	// RELATIONSHIP to the pin numbering scheme that may be in use on a
	// board.
	number uint32
	// The name supplied by the OS driver.
	name string
	// If the line is in use, this may be populated with the consuming
	// application's information.
	consumer  string
	edge      gpio.Edge
	pull      gpio.Pull
	direction LineDir
	activeLow bool
	mu        sync.Mutex
	fd        int32
	fEdge     *os.File
}

func newLine(chip *Chip, offset uint32, name, consumer string) *Line {
	return &Line{
		chip:     chip,
		number:   offset,
		name:     name,
		consumer: consumer,
	}
}

// Event is a single edge event read from a line configured for edge
// detection.
type Event struct {
	// Timestamp is the kernel supplied event time, nanoseconds read from
	// the monotonic clock.
	Timestamp time.Duration
	// Edge that triggered the event, gpio.RisingEdge or gpio.FallingEdge.
	Edge gpio.Edge
	// Offset of the line that triggered the event within its chip.
	Offset uint32
	// Seqno is the sequence number of the event in the whole request.
	Seqno uint32
	// LineSeqno is the sequence number of the event on this line.
	LineSeqno uint32
}

// Close the line, and any associated files/file descriptors that were
// created.
func (line *Line) Close() {
	line.mu.Lock()
	defer line.mu.Unlock()
	if line.fEdge != nil {
		_ = line.fEdge.Close()
	} else if line.fd != 0 {
		_ = syscall_close_wrapper(int(line.fd))
	}
	line.fd = 0
	line.consumer = ""
	line.edge = gpio.NoEdge
	line.direction = LineDirNotSet
	line.pull = gpio.PullNoChange
	line.fEdge = nil
}

// Chip returns the chip this line belongs to.
func (line *Line) Chip() *Chip {
	return line.chip
}

// Consumer returns the name of the consumer specified for a line when a
// line request was performed. The format used by this library is
// program_name@pid.
func (line *Line) Consumer() string {
	return line.consumer
}

// DefaultPull - return gpio.PullNoChange. The GPIO v2 kernel ioctls can't
// report this.
func (line *Line) DefaultPull() gpio.Pull {
	return gpio.PullNoChange
}

// Halt interrupts a pending WaitForEdge() or WaitForEvent() call.
func (line *Line) Halt() error {
	if line.fEdge != nil {
		return line.fEdge.SetReadDeadline(time.UnixMilli(0))
	}
	return nil
}

// In configures the Line for input. Implements gpio.PinIn.
func (line *Line) In(pull gpio.Pull, edge gpio.Edge) error {
	line.mu.Lock()
	defer line.mu.Unlock()
	flags := getFlags(LineInput, edge, pull, line.activeLow)
	line.edge = edge
	line.direction = LineInput
	line.pull = pull

	return line.setLine(flags)
}

// Name implements gpio.Pin.
func (line *Line) Name() string {
	return line.name
}

// Number returns the line offset/number within the Chip. Implements
// gpio.Pin.
func (line *Line) Number() int {
	return int(line.number)
}

// SetActiveLow sets whether the line is treated as active low. It takes
// effect on the next In() or Out() configuration of the line.
func (line *Line) SetActiveLow(activeLow bool) {
	line.mu.Lock()
	defer line.mu.Unlock()
	line.activeLow = activeLow
}

// Out writes the specified level to the line. Implements gpio.PinOut.
func (line *Line) Out(l gpio.Level) error {
	line.mu.Lock()
	defer line.mu.Unlock()
	if line.direction != LineOutput {
		if err := line.setOut(); err != nil {
			return fmt.Errorf("Line.Out(): %w", err)
		}
	}
	var data gpio_v2_line_values
	data.mask = 0x01
	if l {
		data.bits = 0x01
	}
	return ioctl_set_gpio_v2_line_values(uintptr(line.fd), &data)
}

// Pull returns the configured line bias.
func (line *Line) Pull() gpio.Pull {
	return line.pull
}

// PWM is not implemented because the kernel PWM interface is a different
// one, not part of the GPIO ioctls.
func (line *Line) PWM(gpio.Duty, physic.Frequency) error {
	return errors.New("PWM() not implemented")
}

// Read the value of this line. Implements gpio.PinIn.
func (line *Line) Read() gpio.Level {
	if line.direction != LineInput {
		if err := line.In(gpio.PullUp, gpio.NoEdge); err != nil {
			log.Println("Line.Read(): ", err)
			return false
		}
	}
	line.mu.Lock()
	defer line.mu.Unlock()
	var data gpio_v2_line_values
	data.mask = 0x01
	if err := ioctl_get_gpio_v2_line_values(uintptr(line.fd), &data); err != nil {
		log.Println(err)
		return false
	}
	return data.bits&0x01 == 0x01
}

func (line *Line) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Line      int    `json:"Line"`
		Name      string `json:"Name"`
		Consumer  string `json:"Consumer"`
		Direction Label  `json:"Direction"`
		Pull      Label  `json:"Pull"`
		Edges     Label  `json:"Edges"`
	}{
		Line:      line.Number(),
		Name:      line.Name(),
		Consumer:  line.Consumer(),
		Direction: directionLabels[line.direction],
		Pull:      pullLabels[line.pull],
		Edges:     edgeLabels[line.edge]})
}

// String returns information about the line in valid JSON format.
func (line *Line) String() string {
	json, _ := json.MarshalIndent(line, "", "    ")
	return string(json)
}

// WaitForEdge waits for this line to trigger an edge event. You must call
// In() with a valid edge for this to work. To interrupt a waiting line,
// call Halt(). Implements gpio.PinIn.
//
// Note that this does not return which edge was detected for the
// gpio.BothEdges configuration. If you need the edge, use WaitForEvent().
//
// timeout for the edge change to occur. If 0, waits forever.
func (line *Line) WaitForEdge(timeout time.Duration) bool {
	_, err := line.readEvent(timeout)
	return err == nil
}

// WaitForEvent waits for an edge event on the line and returns it. You
// must call In() with a valid edge for this to work. To interrupt a
// waiting line, call Halt().
//
// timeout for the event to occur. If 0, waits forever.
func (line *Line) WaitForEvent(timeout time.Duration) (Event, error) {
	raw, err := line.readEvent(timeout)
	if err != nil {
		return Event{}, err
	}
	return eventFromRaw(raw), nil
}

func eventFromRaw(raw gpio_v2_line_event) Event {
	evt := Event{
		Timestamp: time.Duration(raw.Timestamp_ns),
		Offset:    raw.Offset,
		Seqno:     raw.Seqno,
		LineSeqno: raw.LineSeqno,
	}
	switch raw.Id {
	case _GPIO_V2_LINE_EVENT_RISING_EDGE:
		evt.Edge = gpio.RisingEdge
	case _GPIO_V2_LINE_EVENT_FALLING_EDGE:
		evt.Edge = gpio.FallingEdge
	}
	return evt
}

// readEvent blocks until the next gpio_v2_line_event on the request fd, a
// timeout, or a Halt().
func (line *Line) readEvent(timeout time.Duration) (gpio_v2_line_event, error) {
	var event gpio_v2_line_event
	if line.edge == gpio.NoEdge || line.direction == LineDirNotSet {
		return event, errors.New("line hasn't been configured for edge detection")
	}
	if line.fEdge == nil {
		if err := syscall_nonblock_wrapper(int(line.fd), true); err != nil {
			return event, fmt.Errorf("readEvent() SetNonblock: %w", err)
		}
		line.fEdge = os.NewFile(uintptr(line.fd), fmt.Sprintf("gpio-%d", line.number))
	}
	var deadline time.Time
	if timeout != 0 {
		deadline = time.Now().Add(timeout)
	}
	if err := line.fEdge.SetReadDeadline(deadline); err != nil {
		return event, fmt.Errorf("readEvent() SetReadDeadline: %w", err)
	}
	// If the read times out, or is interrupted via Halt(), it returns
	// "i/o timeout".
	err := binary.Read(line.fEdge, binary.LittleEndian, &event)
	return event, err
}

// getLine returns the file descriptor associated with this line. If it
// hasn't been previously requested, then the line is requested from the
// chip.
func (line *Line) getLine() (int32, error) {
	if line.fd != 0 {
		return line.fd, nil
	}
	var req gpio_v2_line_request
	req.offsets[0] = line.number
	req.num_lines = 1
	copy(req.consumer[:], consumer)

	err := ioctl_gpio_v2_line_request(line.chip.fd, &req)
	if err != nil {
		return 0, fmt.Errorf("line_request ioctl: %w", err)
	}
	line.fd = req.fd
	line.consumer = string(consumer)
	return line.fd, nil
}

func (line *Line) setOut() error {
	line.direction = LineOutput
	line.edge = gpio.NoEdge
	line.pull = gpio.PullNoChange
	return line.setLine(getFlags(LineOutput, line.edge, line.pull, line.activeLow))
}

func (line *Line) setLine(flags uint64) error {
	req_fd, err := line.getLine()
	if err != nil {
		return err
	}

	var req gpio_v2_line_config
	req.flags = flags
	return ioctl_gpio_v2_line_config(uintptr(req_fd), &req)
}

// Deprecated: Use PinFunc.Func. Function implements pin.Pin.
func (line *Line) Function() string {
	return string(line.Func())
}

// Func implements pin.PinFunc.
func (line *Line) Func() pin.Func {
	if line.direction == LineInput {
		if line.Read() {
			return gpio.IN_HIGH
		}
		return gpio.IN_LOW
	} else if line.direction == LineOutput {
		if line.Read() {
			return gpio.OUT_HIGH
		}
		return gpio.OUT_LOW
	}
	return pin.FuncNone
}

// SupportedFuncs implements pin.PinFunc.
func (line *Line) SupportedFuncs() []pin.Func {
	return []pin.Func{gpio.IN, gpio.OUT}
}

// SetFunc implements pin.PinFunc.
func (line *Line) SetFunc(f pin.Func) error {
	switch f {
	case gpio.IN:
		return line.In(gpio.PullNoChange, gpio.NoEdge)
	case gpio.OUT_HIGH:
		return line.Out(gpio.High)
	case gpio.OUT, gpio.OUT_LOW:
		return line.Out(gpio.Low)
	default:
		return errors.New("unsupported function")
	}
}

// getFlags accepts a set of GPIO configuration values and returns an
// appropriate uint64 ioctl gpio flag.
func getFlags(dir LineDir, edge gpio.Edge, pull gpio.Pull, activeLow bool) uint64 {
	var flags uint64
	if dir == LineInput {
		flags |= _GPIO_V2_LINE_FLAG_INPUT
	} else if dir == LineOutput {
		flags |= _GPIO_V2_LINE_FLAG_OUTPUT
	}
	if pull == gpio.PullUp {
		flags |= _GPIO_V2_LINE_FLAG_BIAS_PULL_UP
	} else if pull == gpio.PullDown {
		flags |= _GPIO_V2_LINE_FLAG_BIAS_PULL_DOWN
	}
	if edge == gpio.RisingEdge {
		flags |= _GPIO_V2_LINE_FLAG_EDGE_RISING
	} else if edge == gpio.FallingEdge {
		flags |= _GPIO_V2_LINE_FLAG_EDGE_FALLING
	} else if edge == gpio.BothEdges {
		flags |= _GPIO_V2_LINE_FLAG_EDGE_RISING | _GPIO_V2_LINE_FLAG_EDGE_FALLING
	}
	if activeLow {
		flags |= _GPIO_V2_LINE_FLAG_ACTIVE_LOW
	}
	return flags
}

// Ensure that Interfaces for these types are implemented fully.
var _ gpio.PinIO = &Line{}
var _ gpio.PinIn = &Line{}
var _ gpio.PinOut = &Line{}
var _ pin.PinFunc = &Line{}
