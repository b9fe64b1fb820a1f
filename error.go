// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package si70xx

import "errors"

var (
	// ErrChecksum is returned when a response fails CRC-8 validation.
	// The reading is discarded; no retry is performed, the caller
	// decides whether to repeat the measurement.
	ErrChecksum = errors.New("si70xx: invalid crc")

	// ErrTimeout is returned when a no-hold measurement is still not
	// ready after the configured poll budget. Bus errors are propagated
	// as-is, wrapped with context.
	ErrTimeout = errors.New("si70xx: conversion timeout")
)
