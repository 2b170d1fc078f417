// Package uart provides a driver for the NS16550A serial port that the
// kernel uses as its console.
package uart

import (
	"io"
	"rvos/kernel"
	"rvos/kernel/device"
	"rvos/kernel/kfmt"
	"unsafe"
)

const (
	// DefaultBase is the MMIO address of the UART on the qemu virt machine.
	DefaultBase = uintptr(0x1000_0000)

	regTHR = 0 // transmit holding (write)
	regRBR = 0 // receive buffer (read)
	regDLL = 0 // divisor latch low (DLAB=1)
	regIER = 1 // interrupt enable
	regDLM = 1 // divisor latch high (DLAB=1)
	regFCR = 2 // FIFO control
	regLCR = 3 // line control
	regLSR = 5 // line status

	lcrWordLen8 = 0x03
	lcrDLAB     = 0x80
	fcrEnable   = 0x07

	lsrDataReady = 0x01
	lsrTHREmpty  = 0x20

	// The divisor yields 38400 baud with the 1.8432 MHz reference clock.
	baudDivisor = 3
)

type registers [8]uint8

var (
	// regsPtrFn returns a pointer to the device registers mapped at the
	// supplied address. Tests override it to point to a regular array.
	regsPtrFn = func(base uintptr) unsafe.Pointer {
		return unsafe.Pointer(base)
	}
)

// Device is an NS16550A compatible serial port.
type Device struct {
	base uintptr
	regs *registers
}

// New returns a driver for the UART whose registers are mapped at base.
func New(base uintptr) *Device {
	return &Device{
		base: base,
		regs: (*registers)(regsPtrFn(base)),
	}
}

// DriverName returns the name of this driver.
func (d *Device) DriverName() string {
	return "ns16550a"
}

// DriverVersion returns the version of this driver.
func (d *Device) DriverVersion() (uint16, uint16, uint16) {
	return 0, 1, 0
}

// DriverInit programs the line for 8N1 operation with FIFOs enabled and
// interrupts disabled.
func (d *Device) DriverInit(w io.Writer) *kernel.Error {
	d.regs[regIER] = 0
	d.regs[regLCR] = lcrDLAB
	d.regs[regDLL] = baudDivisor & 0xff
	d.regs[regDLM] = baudDivisor >> 8
	d.regs[regLCR] = lcrWordLen8
	d.regs[regFCR] = fcrEnable

	kfmt.Fprintf(w, "mmio base 0x%x ", d.base)
	return nil
}

// WriteByte transmits a single byte, waiting for the transmitter to accept it.
func (d *Device) WriteByte(b byte) error {
	for d.regs[regLSR]&lsrTHREmpty == 0 {
	}

	d.regs[regTHR] = b
	return nil
}

// Write implements io.Writer. Line feeds are sent as CR LF.
func (d *Device) Write(p []byte) (int, error) {
	for _, b := range p {
		if b == '\n' {
			_ = d.WriteByte('\r')
		}
		_ = d.WriteByte(b)
	}

	return len(p), nil
}

// ReadByte returns the next received byte. It returns io.EOF when no data
// is available.
func (d *Device) ReadByte() (byte, error) {
	if d.regs[regLSR]&lsrDataReady == 0 {
		return 0, io.EOF
	}

	return d.regs[regRBR], nil
}

func probeForUART() device.Driver {
	return New(DefaultBase)
}

func init() {
	device.RegisterDriver(&device.DriverInfo{
		Order: device.DetectOrderEarly,
		Probe: probeForUART,
	})
}
