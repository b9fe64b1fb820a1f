// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package si70xx

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/physic"
)

// User register 1 layout. RES1/RES0 select the measurement resolution,
// VDDS reports a low supply voltage (read-only), HTRE enables the heater.
// The remaining bits are reserved and must be written back unchanged,
// which is why every register write below is a read-modify-write over an
// owned-bits mask.
const (
	userRegRES0 byte = 1 << 0
	userRegHTRE byte = 1 << 2
	userRegVDDS byte = 1 << 6
	userRegRES1 byte = 1 << 7

	userRegResolutionMask = userRegRES1 | userRegRES0

	// Heater control register, bits 3:0. The upper bits are reserved.
	heaterRegLevelMask byte = 0x0f
)

// Resolution selects the ADC resolution for both measurements.
type Resolution int

const (
	// 12-bit RH, 14-bit temperature. Power-on default.
	ResolutionRH12Temp14 Resolution = iota
	// 8-bit RH, 12-bit temperature.
	ResolutionRH8Temp12
	// 10-bit RH, 13-bit temperature.
	ResolutionRH10Temp13
	// 11-bit RH, 11-bit temperature.
	ResolutionRH11Temp11
)

// RES1/RES0 encoding per resolution.
var resolutionBits = [4]byte{
	0x00,
	userRegRES0,
	userRegRES1,
	userRegRES1 | userRegRES0,
}

// Worst case duration of one RH measurement per resolution, including
// the temperature conversion the chip runs as part of it.
var conversionTime = [4]time.Duration{
	22800 * time.Microsecond,
	6900 * time.Microsecond,
	10700 * time.Microsecond,
	9400 * time.Microsecond,
}

// ConversionTime returns the worst case duration of one humidity
// measurement at this resolution. Useful for sizing Opts.PollInterval and
// Opts.MaxPolls for no-hold operation.
func (r Resolution) ConversionTime() time.Duration {
	if r < ResolutionRH12Temp14 || r > ResolutionRH11Temp11 {
		return conversionTime[ResolutionRH12Temp14]
	}
	return conversionTime[r]
}

func (r Resolution) String() string {
	switch r {
	case ResolutionRH12Temp14:
		return "RH 12-bit / temp 14-bit"
	case ResolutionRH8Temp12:
		return "RH 8-bit / temp 12-bit"
	case ResolutionRH10Temp13:
		return "RH 10-bit / temp 13-bit"
	case ResolutionRH11Temp11:
		return "RH 11-bit / temp 11-bit"
	}
	return fmt.Sprintf("Resolution(%d)", int(r))
}

// HeaterLevel sets the heater current, 0 (3.09mA) to 15 (94.2mA).
type HeaterLevel int

const (
	HeaterLevelMin HeaterLevel = 0
	HeaterLevelMax HeaterLevel = 15
)

// Current returns the heater current drawn at this level. The steps are
// linear, about 6.07mA apart.
func (h HeaterLevel) Current() physic.ElectricCurrent {
	return 3090*physic.MicroAmpere + physic.ElectricCurrent(h)*6074*physic.MicroAmpere
}

func (d *Dev) readRegister(cmd byte) (byte, error) {
	r := make([]byte, 1)
	if err := d.d.Tx([]byte{cmd}, r); err != nil {
		return 0, fmt.Errorf("si70xx: error reading register %#02x: %w", cmd, err)
	}
	return r[0], nil
}

func (d *Dev) writeRegister(cmd, value byte) error {
	if err := d.d.Tx([]byte{cmd, value}, nil); err != nil {
		return fmt.Errorf("si70xx: error writing register %#02x: %w", cmd, err)
	}
	return nil
}

// updateRegister rewrites only the masked bits of a register. The current
// value is read first so unrelated bits, including the read-only VDDS
// status bit and the reserved bits, keep their state.
func (d *Dev) updateRegister(readCmd, writeCmd, mask, bits byte) error {
	cur, err := d.readRegister(readCmd)
	if err != nil {
		return err
	}
	return d.writeRegister(writeCmd, cur&^mask|bits&mask)
}

// UserRegister1 returns the raw value of user register 1. Most callers
// want Resolution, Heater or VddLow instead.
func (d *Dev) UserRegister1() (byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readRegister(cmdReadUserReg1)
}

// HeaterRegister returns the raw value of the heater control register.
func (d *Dev) HeaterRegister() (byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readRegister(cmdReadHeaterReg)
}

// Resolution returns the currently configured measurement resolution.
func (d *Dev) Resolution() (Resolution, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	reg, err := d.readRegister(cmdReadUserReg1)
	if err != nil {
		return 0, err
	}
	for res, bits := range resolutionBits {
		if reg&userRegResolutionMask == bits {
			return Resolution(res), nil
		}
	}
	// Unreachable, the four encodings cover the mask.
	return 0, nil
}

// SetResolution configures the measurement resolution. The setting is
// retained by the chip across power cycles.
func (d *Dev) SetResolution(res Resolution) error {
	if res < ResolutionRH12Temp14 || res > ResolutionRH11Temp11 {
		return fmt.Errorf("si70xx: invalid resolution %d", int(res))
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.updateRegister(cmdReadUserReg1, cmdWriteUserReg1, userRegResolutionMask, resolutionBits[res])
}

// VddLow reports whether the chip considers its supply voltage low
// (below about 1.9V). Measurements taken in this condition may be
// inaccurate, and the heater should not be used.
func (d *Dev) VddLow() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	reg, err := d.readRegister(cmdReadUserReg1)
	if err != nil {
		return false, err
	}
	return reg&userRegVDDS != 0, nil
}

// Heater reports whether the on-chip heater is enabled.
func (d *Dev) Heater() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	reg, err := d.readRegister(cmdReadUserReg1)
	if err != nil {
		return false, err
	}
	return reg&userRegHTRE != 0, nil
}

// SetHeater enables or disables the on-chip heater. The heater drives
// condensation off the sensing element; while it runs, temperature
// readings are offset by the self-heating. The current is set with
// SetHeaterLevel.
func (d *Dev) SetHeater(on bool) error {
	var bits byte
	if on {
		bits = userRegHTRE
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.updateRegister(cmdReadUserReg1, cmdWriteUserReg1, userRegHTRE, bits)
}

// HeaterLevel returns the configured heater current level.
func (d *Dev) HeaterLevel() (HeaterLevel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	reg, err := d.readRegister(cmdReadHeaterReg)
	if err != nil {
		return 0, err
	}
	return HeaterLevel(reg & heaterRegLevelMask), nil
}

// SetHeaterLevel sets the heater current level. It does not turn the
// heater on; use SetHeater for that.
func (d *Dev) SetHeaterLevel(level HeaterLevel) error {
	if level < HeaterLevelMin || level > HeaterLevelMax {
		return fmt.Errorf("si70xx: invalid heater level %d", int(level))
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.updateRegister(cmdReadHeaterReg, cmdWriteHeaterReg, heaterRegLevelMask, byte(level))
}
