// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package common

import "testing"

func TestCRC8(t *testing.T) {
	var tests = []struct {
		bytes  []byte
		result byte
	}{
		// Vectors published in the HTU21D datasheet, which uses the
		// same generator.
		{bytes: []byte{0xdc}, result: 0x79},
		{bytes: []byte{0x68, 0x3a}, result: 0x7c},
		{bytes: []byte{0x4e, 0x85}, result: 0x6b},
		{bytes: []byte{0x64, 0x4b}, result: 0x01},
		{bytes: []byte{0x66, 0x00}, result: 0x0f},
	}
	for _, test := range tests {
		res := CRC8(test.bytes)
		if res != test.result {
			t.Errorf("CRC8(%#v)!=0x%x received 0x%x", test.bytes, test.result, res)
		}
	}
}
