// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package si70xx controls the Silicon Labs Si7006/Si7013/Si7020/Si7021
// relative humidity and temperature sensors over I²C.
//
// The sensors share one fixed bus address (0x40), one command set and one
// response format; they differ in accuracy and, for the Si7013, in an
// auxiliary analog input and a second selectable bus address. Si7013
// support is compiled in with the "si7013" build tag.
//
// The si70xx.Dev type implements the physic.SenseEnv interface. A Sense
// fills in temperature and humidity; pressure is always 0 since the
// device does not measure it.
//
// Measurements run in one of two modes. In hold-master mode (the default)
// the chip stretches the bus clock while a conversion runs and the read
// returns once data is ready. In no-hold mode the bus is released during
// the conversion, the chip does not acknowledge reads until data is ready
// and the driver polls. Use no-hold on hosts or muxed buses that do not
// tolerate clock stretching.
//
// # Datasheet
//
// https://www.silabs.com/documents/public/data-sheets/Si7021-A20.pdf
package si70xx
