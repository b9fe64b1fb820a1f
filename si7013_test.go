// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build si7013

package si70xx

import (
	"testing"

	"periph.io/x/conn/v3/i2c/i2ctest"
)

func TestNewSi7013(t *testing.T) {
	bus := &i2ctest.Playback{DontPanic: true}
	if _, err := NewSi7013(bus, 0x42, nil); err == nil {
		t.Error("NewSi7013() invalid address did not generate error.")
	}
	for _, addr := range []uint16{Addr, AltAddr} {
		if _, err := NewSi7013(bus, addr, nil); err != nil {
			t.Errorf("NewSi7013(%#02x): %v", addr, err)
		}
	}
}

func TestAuxVoltage(t *testing.T) {
	ops := []i2ctest.IO{
		{Addr: AltAddr, W: []byte{cmdMeasureVinHold}, R: []byte{0x66, 0x00, 0x0f}},
	}
	dev, err := NewSi7013(&i2ctest.Playback{Ops: ops, DontPanic: true}, AltAddr, nil)
	if err != nil {
		t.Fatal(err)
	}
	code, err := dev.AuxVoltage()
	if err != nil {
		t.Fatal(err)
	}
	if code != 0x6600 {
		t.Errorf("expected code 0x6600, got %#04x", code)
	}
}
