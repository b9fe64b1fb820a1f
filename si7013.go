// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build si7013

package si70xx

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
)

// AltAddr is the second bus address the Si7013 can be strapped to. The
// other family members answer only at Addr.
const AltAddr uint16 = 0x41

// Measure the voltage on the Si7013 auxiliary analog input,
// hold-master framing.
const cmdMeasureVinHold byte = 0xee

// NewSi7013 returns an object that communicates over I²C to a Si7013
// sensor at the given address, Addr or AltAddr. The opts can be nil.
func NewSi7013(b i2c.Bus, addr uint16, opts *Opts) (*Dev, error) {
	if addr != Addr && addr != AltAddr {
		return nil, fmt.Errorf("si70xx: invalid si7013 address %#02x", addr)
	}
	return newDev(b, addr, opts)
}

// AuxVoltage measures the Si7013 auxiliary analog input and returns the
// raw conversion code. Scaling to a voltage or a thermistor temperature
// depends on the external divider network, so it is left to the caller.
func (d *Dev) AuxVoltage() (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r := make([]byte, 3)
	if err := d.d.Tx([]byte{cmdMeasureVinHold}, r); err != nil {
		return 0, fmt.Errorf("si70xx: aux measure: %w", err)
	}
	return decode(r)
}
