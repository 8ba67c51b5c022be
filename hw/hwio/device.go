package hwio

import "gbcore/emu/log"

// Device is a BankIO8 implementation that allows manual management of an entire
// range of memory.
type Device struct {
	Name  string // name of the memory area (for debugging)
	Size  int    // size of the memory area
	Flags RWFlags

	ReadCb  func(addr uint16) uint8
	PeekCb  func(addr uint16) uint8
	WriteCb func(addr uint16, val uint8)
}

func (d *Device) Read8(addr uint16) uint8 {
	switch {
	case d.Flags&WriteOnlyFlag != 0:
		log.ModHwIo.DebugZ("Read8 from writeonly device").
			String("name", d.Name).
			Hex16("addr", addr).
			End()
		return 0xFF
	case d.ReadCb == nil:
		return 0xFF
	}
	return d.ReadCb(addr)
}

func (d *Device) Peek8(addr uint16) uint8 {
	if d.PeekCb != nil {
		return d.PeekCb(addr)
	}
	if d.ReadCb != nil && d.Flags&WriteOnlyFlag == 0 {
		return d.ReadCb(addr)
	}
	return 0xFF
}

func (d *Device) Write8(addr uint16, val uint8) {
	switch {
	case d.Flags&ReadOnlyFlag != 0:
		log.ModHwIo.DebugZ("Write8 to readonly device").
			String("name", d.Name).
			Hex16("addr", addr).
			End()
		return
	case d.WriteCb == nil:
		return
	}

	d.WriteCb(addr, val)
}

// OpenBus is mapped on unused I/O ranges: reads return 0xFF, writes are
// ignored.
var OpenBus = &Device{Name: "open bus"}
