package cart

import (
	"gbcore/hw/hwio"
	"gbcore/hw/snapshot"
)

// romOnly is a 32KB cartridge without bank controller, with an optional 8KB
// RAM.
type romOnly struct {
	base
}

func (c *romOnly) Install(bus *hwio.Table) {
	c.install(bus, c.readROM, nil, c.readRAM, c.writeRAM)
}

func (c *romOnly) Reset(savedRAM []byte) { c.restoreRAM(savedRAM) }

func (c *romOnly) readROM(addr uint16) uint8 { return c.rom[int(addr)%len(c.rom)] }

func (c *romOnly) readRAM(addr uint16) uint8 {
	if off := c.ramOffset(0, addr); off >= 0 {
		return c.ram[off]
	}
	return 0xFF
}

func (c *romOnly) writeRAM(addr uint16, val uint8) {
	if off := c.ramOffset(0, addr); off >= 0 {
		c.ram[off] = val
	}
}

func (c *romOnly) Save(s *snapshot.State) { s.WriteBytes(c.ram) }
func (c *romOnly) Load(s *snapshot.State) { s.ReadBytes(c.ram) }
