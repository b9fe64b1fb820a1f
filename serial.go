// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package si70xx

import (
	"fmt"

	"github.com/GermanBionicSystems/si70xx/common"
)

// Model identifies the device variant. It is factory-programmed into
// byte SNB_3 of the electronic serial number.
type Model byte

const (
	Si7006 Model = 0x06
	Si7013 Model = 0x0d
	Si7020 Model = 0x14
	Si7021 Model = 0x15
)

func (m Model) String() string {
	switch m {
	case Si7006:
		return "Si7006"
	case Si7013:
		return "Si7013"
	case Si7020:
		return "Si7020"
	case Si7021:
		return "Si7021"
	case 0x00, 0xff:
		return "engineering sample"
	}
	return fmt.Sprintf("Model(%#02x)", byte(m))
}

// Revision is the firmware revision of the device.
type Revision byte

const (
	Revision1 Revision = 0xff
	Revision2 Revision = 0x20
)

func (r Revision) String() string {
	switch r {
	case Revision1:
		return "1.0"
	case Revision2:
		return "2.0"
	}
	return fmt.Sprintf("Revision(%#02x)", byte(r))
}

// SerialNumber returns the 64-bit electronic serial number set at the
// factory. The value is delivered in two reads; every byte group is
// covered by a running CRC over all identifier bytes of that access.
func (d *Dev) SerialNumber() (uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.serialNumber()
}

func (d *Dev) serialNumber() (uint64, error) {
	// First access: SNA_3..SNA_0, a CRC after every byte.
	ra := make([]byte, 8)
	if err := d.d.Tx(cmdReadSerialFirst, ra); err != nil {
		return 0, fmt.Errorf("si70xx: error reading serial number: %w", err)
	}
	var sna [4]byte
	for i := 0; i < 4; i++ {
		sna[i] = ra[2*i]
		if common.CRC8(sna[:i+1]) != ra[2*i+1] {
			return 0, ErrChecksum
		}
	}
	// Second access: SNB_3..SNB_0, a CRC after every byte pair.
	rb := make([]byte, 6)
	if err := d.d.Tx(cmdReadSerialSecond, rb); err != nil {
		return 0, fmt.Errorf("si70xx: error reading serial number: %w", err)
	}
	snb := []byte{rb[0], rb[1], rb[3], rb[4]}
	if common.CRC8(snb[:2]) != rb[2] || common.CRC8(snb) != rb[5] {
		return 0, ErrChecksum
	}
	var sn uint64
	for _, b := range sna {
		sn = sn<<8 | uint64(b)
	}
	for _, b := range snb {
		sn = sn<<8 | uint64(b)
	}
	return sn, nil
}

// Model returns the device variant, decoded from the serial number.
func (d *Dev) Model() (Model, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	sn, err := d.serialNumber()
	if err != nil {
		return 0, err
	}
	return Model(sn >> 24), nil
}

// FirmwareRevision returns the firmware revision of the device.
func (d *Dev) FirmwareRevision() (Revision, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r := make([]byte, 1)
	if err := d.d.Tx(cmdReadFirmwareRev, r); err != nil {
		return 0, fmt.Errorf("si70xx: error reading firmware revision: %w", err)
	}
	return Revision(r[0]), nil
}
