// Package hal probes the registered device drivers and wires the console
// device to the kernel's output.
package hal

import (
	"bytes"
	"io"
	"rvos/kernel/device"
	"rvos/kernel/kfmt"
	"sort"
)

// managedDevices contains the devices discovered by the HAL.
type managedDevices struct {
	activeConsole io.Writer

	// activeDrivers tracks all initialized device drivers.
	activeDrivers []device.Driver
}

var (
	devices managedDevices
	strBuf  bytes.Buffer
)

// ActiveConsole returns the device that receives kernel output or nil if
// no console has been detected.
func ActiveConsole() io.Writer {
	return devices.activeConsole
}

// ActiveDrivers returns the drivers that were successfully initialized.
func ActiveDrivers() []device.Driver {
	return devices.activeDrivers
}

// DetectHardware probes for hardware devices and initializes the appropriate
// drivers.
func DetectHardware() {
	// Get driver list and sort by detection priority
	drivers := device.DriverList()
	sort.Sort(drivers)

	probe(drivers)
}

// outputSink forwards writes to the current kfmt output sink, so driver
// init output reaches the console as soon as one is attached.
type outputSink struct{}

func (outputSink) Write(p []byte) (int, error) {
	kfmt.Fprintf(kfmt.GetOutputSink(), "%s", p)
	return len(p), nil
}

// probe executes the probe function for each driver and invokes
// onDriverInit for each successfully initialized driver.
func probe(driverInfoList device.DriverInfoList) {
	var w = kfmt.PrefixWriter{Sink: outputSink{}}

	for _, info := range driverInfoList {
		drv := info.Probe()
		if drv == nil {
			continue
		}

		strBuf.Reset()
		major, minor, patch := drv.DriverVersion()
		kfmt.Fprintf(&strBuf, "[hal] %s(%d.%d.%d): ", drv.DriverName(), major, minor, patch)
		w.Prefix = strBuf.Bytes()

		if err := drv.DriverInit(&w); err != nil {
			kfmt.Fprintf(&w, "init failed: %s\n", err.Message)
			continue
		}

		kfmt.Fprintf(&w, "initialized\n")
		onDriverInit(drv)
		devices.activeDrivers = append(devices.activeDrivers, drv)
	}
}

// onDriverInit is invoked by probe() whenever a piece of hardware is detected
// and successfully initialized. The first driver that can accept output
// becomes the console and receives any output buffered so far.
func onDriverInit(drv device.Driver) {
	cons, ok := drv.(io.Writer)
	if !ok || devices.activeConsole != nil {
		return
	}

	devices.activeConsole = cons
	kfmt.SetOutputSink(cons)
}
