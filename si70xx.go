// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package si70xx

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"

	"github.com/GermanBionicSystems/si70xx/common"
)

const (
	// Addr is the bus address of the sensor family. The chips have no
	// address pins; only the Si7013 offers a second address (see the
	// si7013 build tag).
	Addr uint16 = 0x40

	// Byte commands for the device. Register reads and writes are a
	// single command byte, optionally followed by the data byte.
	cmdMeasureRHHold     byte = 0xe5
	cmdMeasureRHNoHold   byte = 0xf5
	cmdMeasureTempHold   byte = 0xe3
	cmdMeasureTempNoHold byte = 0xf3
	// Returns the temperature code produced by the previous RH
	// conversion without starting a new one.
	cmdReadTempFromRH byte = 0xe0
	cmdWriteUserReg1  byte = 0xe6
	cmdReadUserReg1   byte = 0xe7
	cmdWriteHeaterReg byte = 0x51
	cmdReadHeaterReg  byte = 0x11
	cmdReset          byte = 0xfe

	// Maximum power-up time after a soft reset.
	resetSettle = 15 * time.Millisecond

	// Worst case for one Sense at the default resolution: a 12-bit RH
	// conversion plus the 14-bit temperature conversion it includes.
	minSampleInterval = 25 * time.Millisecond

	codeDivisor = float64(65536)
)

// Two-byte command sequences.
var (
	cmdReadSerialFirst  = []byte{0xfa, 0x0f}
	cmdReadSerialSecond = []byte{0xfc, 0xc9}
	cmdReadFirmwareRev  = []byte{0x84, 0xb8}
)

// MeasureMode selects how the driver waits for a conversion.
type MeasureMode int

const (
	// HoldMaster lets the chip stretch the bus clock while a conversion
	// runs; the read returns once data is ready.
	HoldMaster MeasureMode = iota
	// NoHold releases the bus during the conversion. The chip does not
	// acknowledge reads until data is ready and the driver polls.
	NoHold
)

// Opts holds the configuration options for the device.
type Opts struct {
	// Mode selects hold-master or no-hold measurements.
	Mode MeasureMode
	// PollInterval is the delay between read attempts of a no-hold
	// measurement. Leave 0 to use the default of 2ms.
	PollInterval time.Duration
	// MaxPolls bounds the read attempts of a no-hold measurement. The
	// product of MaxPolls and PollInterval must cover the conversion
	// time of the configured resolution (see Resolution.ConversionTime).
	// Leave 0 to use a default sized for the worst case.
	MaxPolls int
}

// DefaultOpts holds the default configuration options for the device:
// hold-master measurements, and a no-hold poll budget of 12 x 2ms which
// covers the slowest (14-bit) conversion.
var DefaultOpts = Opts{
	Mode:         HoldMaster,
	PollInterval: 2 * time.Millisecond,
	MaxPolls:     12,
}

// Dev represents a Si70xx relative humidity/temperature sensor.
//
// A Dev owns its bus connection for the duration of each operation; two
// operations must not be issued concurrently against the same Dev. The
// internal mutex serializes the public methods.
type Dev struct {
	d        *i2c.Dev
	opts     Opts
	mu       sync.Mutex
	shutdown chan struct{}
}

// NewI2C returns an object that communicates over I²C to a Si70xx
// environmental sensor. The opts can be nil, in which case DefaultOpts
// is used.
func NewI2C(b i2c.Bus, opts *Opts) (*Dev, error) {
	return newDev(b, Addr, opts)
}

func newDev(b i2c.Bus, addr uint16, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	o := *opts
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultOpts.PollInterval
	}
	if o.MaxPolls <= 0 {
		o.MaxPolls = DefaultOpts.MaxPolls
	}
	return &Dev{d: &i2c.Dev{Bus: b, Addr: addr}, opts: o}, nil
}

// wait pauses for the duration or until the context is cancelled. This is
// the only place the driver gives up the processor; with a background
// context it degenerates to a plain sleep.
func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// decode checks the 3-byte measurement framing (value high byte, value low
// byte, CRC) and extracts the 16-bit code.
func decode(r []byte) (uint16, error) {
	if common.CRC8(r[:2]) != r[2] {
		return 0, ErrChecksum
	}
	return uint16(r[0])<<8 | uint16(r[1]), nil
}

// measure runs one conversion cycle: issue the command, obtain the 3-byte
// response, validate its CRC and return the 16-bit code. In hold-master
// mode the chip stretches the clock until the conversion completes, so a
// single write+read transaction suffices. In no-hold mode the chip NACKs
// reads while converting; those read failures are treated as "still
// converting" and retried until the poll budget runs out.
func (d *Dev) measure(ctx context.Context, hold, noHold byte) (uint16, error) {
	r := make([]byte, 3)
	if d.opts.Mode == HoldMaster {
		if err := d.d.Tx([]byte{hold}, r); err != nil {
			return 0, fmt.Errorf("si70xx: measure: %w", err)
		}
		return decode(r)
	}
	if err := d.d.Tx([]byte{noHold}, nil); err != nil {
		return 0, fmt.Errorf("si70xx: measure: %w", err)
	}
	var last error
	for i := 0; i < d.opts.MaxPolls; i++ {
		if err := wait(ctx, d.opts.PollInterval); err != nil {
			return 0, err
		}
		if last = d.d.Tx(nil, r); last == nil {
			return decode(r)
		}
	}
	return 0, fmt.Errorf("%w (last bus error: %v)", ErrTimeout, last)
}

// readTempFromRH reads back the temperature code of the previous RH
// conversion. This command returns only two bytes; the chip appends no
// checksum on this path.
func (d *Dev) readTempFromRH() (uint16, error) {
	r := make([]byte, 2)
	if err := d.d.Tx([]byte{cmdReadTempFromRH}, r); err != nil {
		return 0, fmt.Errorf("si70xx: read temperature: %w", err)
	}
	return uint16(r[0])<<8 | uint16(r[1]), nil
}

// codeToHumidity applies the linear transfer function from the datasheet.
// The raw output range is -6% to 119%; readings outside 0-100% are
// possible near the ends of the sensor's range and are left to the caller
// to clamp.
func codeToHumidity(code uint16) physic.RelativeHumidity {
	// RH = -6 + 125*(code/65536)
	f := 125.0*float64(code)/codeDivisor - 6.0
	return physic.RelativeHumidity(f * float64(physic.PercentRH))
}

// codeToTemperature applies the linear transfer function from the
// datasheet. The output range is -46.85°C to 128.87°C.
func codeToTemperature(code uint16) physic.Temperature {
	// T = -46.85 + 175.72*(code/65536)
	f := 175.72*float64(code)/codeDivisor - 46.85
	return physic.ZeroCelsius + physic.Temperature(f*float64(physic.Celsius))
}

// Sense measures relative humidity and temperature and writes the values
// to env. A single RH conversion produces both values: the temperature is
// read back from the chip without starting a second conversion. Pressure
// is always 0. Implements physic.SenseEnv.
func (d *Dev) Sense(env *physic.Env) error {
	return d.SenseContext(context.Background(), env)
}

// SenseContext is Sense with a context. The no-hold poll delay is the
// suspension point; cancelling the context abandons the operation but the
// chip may still finish the conversion it was told to start.
func (d *Dev) SenseContext(ctx context.Context, env *physic.Env) error {
	env.Temperature = 0
	env.Pressure = 0
	env.Humidity = 0
	d.mu.Lock()
	defer d.mu.Unlock()
	code, err := d.measure(ctx, cmdMeasureRHHold, cmdMeasureRHNoHold)
	if err != nil {
		return err
	}
	tcode, err := d.readTempFromRH()
	if err != nil {
		return err
	}
	env.Humidity = codeToHumidity(code)
	env.Temperature = codeToTemperature(tcode)
	return nil
}

// RelativeHumidity measures and returns the relative humidity.
func (d *Dev) RelativeHumidity() (physic.RelativeHumidity, error) {
	return d.RelativeHumidityContext(context.Background())
}

// RelativeHumidityContext is RelativeHumidity with a context.
func (d *Dev) RelativeHumidityContext(ctx context.Context) (physic.RelativeHumidity, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	code, err := d.measure(ctx, cmdMeasureRHHold, cmdMeasureRHNoHold)
	if err != nil {
		return 0, err
	}
	return codeToHumidity(code), nil
}

// Temperature measures and returns the temperature.
func (d *Dev) Temperature() (physic.Temperature, error) {
	return d.TemperatureContext(context.Background())
}

// TemperatureContext is Temperature with a context.
func (d *Dev) TemperatureContext(ctx context.Context) (physic.Temperature, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	code, err := d.measure(ctx, cmdMeasureTempHold, cmdMeasureTempNoHold)
	if err != nil {
		return 0, err
	}
	return codeToTemperature(code), nil
}

// TemperatureAfterHumidity returns the temperature measured as part of
// the most recent RH conversion, without starting a new conversion. It is
// only meaningful immediately after an RH measurement; called otherwise
// it returns a stale or undefined reading.
func (d *Dev) TemperatureAfterHumidity() (physic.Temperature, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	code, err := d.readTempFromRH()
	if err != nil {
		return 0, err
	}
	return codeToTemperature(code), nil
}

// SenseContinuous continuously reads from the device and sends the output
// to the returned channel. To terminate the read, call Halt(). The
// interval must be at least 25ms, one worst-case conversion.
func (d *Dev) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	if d.shutdown != nil {
		return nil, errors.New("si70xx: SenseContinuous already running")
	}
	if interval < minSampleInterval {
		return nil, errors.New("si70xx: sample interval is < device sample rate")
	}
	d.shutdown = make(chan struct{})
	ch := make(chan physic.Env, 16)
	go func(ch chan<- physic.Env) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		defer close(ch)
		for {
			select {
			case <-d.shutdown:
				d.mu.Lock()
				defer d.mu.Unlock()
				d.shutdown = nil
				return
			case <-ticker.C:
				env := physic.Env{}
				if err := d.Sense(&env); err == nil {
					ch <- env
				}
			}
		}
	}(ch)
	return ch, nil
}

// Halt terminates a SenseContinuous command if running. The device itself
// has no standby command to issue; it idles between conversions on its
// own. Implements conn.Resource.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.shutdown != nil {
		close(d.shutdown)
	}
	return nil
}

// Reset issues a soft reset to the device and waits out its settling
// time. All configuration registers return to their power-on defaults.
func (d *Dev) Reset() error {
	return d.ResetContext(context.Background())
}

// ResetContext is Reset with a context. The settling delay is a
// suspension point.
func (d *Dev) ResetContext(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.d.Tx([]byte{cmdReset}, nil); err != nil {
		return fmt.Errorf("si70xx: error resetting %w", err)
	}
	return wait(ctx, resetSettle)
}

// Precision returns the smallest change in readings the device can
// produce at the default (12-bit RH, 14-bit temperature) resolution.
// Implements physic.SenseEnv.
func (d *Dev) Precision(env *physic.Env) {
	env.Temperature = 11 * physic.MilliKelvin
	env.Humidity = 31 * physic.MilliRH
	env.Pressure = 0
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("si70xx: %s", d.d)
}

var _ conn.Resource = &Dev{}
var _ physic.SenseEnv = &Dev{}
