// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// si70xx reads a Si70xx humidity/temperature sensor attached to a host
// I²C bus and prints the readings.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/si70xx"
)

func main() {
	busName := flag.String("bus", "", "i2c bus to use, empty for the first available")
	interval := flag.Duration("interval", time.Second, "time between readings")
	count := flag.Int("count", 1, "number of readings, 0 for unlimited")
	noHold := flag.Bool("nohold", false, "poll instead of stretching the bus clock during conversions")
	color := flag.Bool("color", true, "colorize output")
	flag.Parse()

	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	bus, err := i2creg.Open(*busName)
	if err != nil {
		log.Fatal(err)
	}
	defer bus.Close()

	opts := si70xx.DefaultOpts
	if *noHold {
		opts.Mode = si70xx.NoHold
	}
	dev, err := si70xx.NewI2C(bus, &opts)
	if err != nil {
		log.Fatal(err)
	}

	out := colorable.NewColorableStdout()
	cyan, yellow, reset := "\x1b[36m", "\x1b[33m", "\x1b[0m"
	if !*color {
		cyan, yellow, reset = "", "", ""
	}

	if model, err := dev.Model(); err == nil {
		sn, _ := dev.SerialNumber()
		fmt.Fprintf(out, "%s serial %#016x\n", model, sn)
	}

	env := physic.Env{}
	for n := 0; *count == 0 || n < *count; n++ {
		if n != 0 {
			time.Sleep(*interval)
		}
		if err := dev.Sense(&env); err != nil {
			log.Print(err)
			continue
		}
		fmt.Fprintf(out, "%s%s%s %s%s%s\n", cyan, env.Temperature, reset, yellow, env.Humidity, reset)
	}
}
