package hw

import (
	"gbcore/emu/log"
	"gbcore/hw/hwio"
	"gbcore/hw/snapshot"
)

// Video timings, in dots. A dot is one 4MHz cycle, a frame lasts 154 lines
// of 456 dots.
const (
	DotsPerLine   = 456
	LinesPerFrame = 154
	DotsPerFrame  = DotsPerLine * LinesPerFrame

	visibleLines = 144
	mode2End     = 80
	mode3End     = mode2End + 172
)

// LCD modes, as found in STAT bits 0-1.
const (
	ModeHBlank uint8 = iota
	ModeVBlank
	ModeOAMScan
	ModeDrawing
)

// Video is the timing part of the PPU: LCD registers, VRAM, OAM and CGB
// palettes, mode sequencing, LY/LYC comparison, and the VBlank and STAT
// interrupts. Pixels are not rendered.
type Video struct {
	LCDC hwio.Reg8
	STAT hwio.Reg8
	SCY  hwio.Reg8
	SCX  hwio.Reg8
	LY   hwio.Reg8
	LYC  hwio.Reg8
	BGP  hwio.Reg8
	OBP0 hwio.Reg8
	OBP1 hwio.Reg8
	WY   hwio.Reg8
	WX   hwio.Reg8

	// CGB only
	VBK  hwio.Reg8
	BCPS hwio.Reg8
	BCPD hwio.Reg8
	OCPS hwio.Reg8
	OCPD hwio.Reg8

	VRAM   [2][0x2000]byte
	OAM    [0xA0]byte
	BGPal  [64]byte
	OBJPal [64]byte

	// HBlank, if set, is called at the start of each visible line HBlank.
	HBlank func()

	irq *Interrupts
	cgb bool

	dot      int
	statLine bool
	frame    uint64

	vramDev hwio.Device
	oamDev  hwio.Device
}

func NewVideo(irq *Interrupts, cgb bool) *Video {
	return &Video{irq: irq, cgb: cgb}
}

func (v *Video) Install(bus *hwio.Table) {
	v.LCDC = hwio.Reg8{Name: "LCDC", WriteCb: v.writeLCDC}
	v.STAT = hwio.Reg8{Name: "STAT", RoMask: 0x07, Unused: 0x80, WriteCb: v.writeStatOrLYC}
	v.SCY = hwio.Reg8{Name: "SCY"}
	v.SCX = hwio.Reg8{Name: "SCX"}
	v.LY = hwio.Reg8{Name: "LY", Flags: hwio.ReadOnlyFlag}
	v.LYC = hwio.Reg8{Name: "LYC", WriteCb: v.writeStatOrLYC}
	v.BGP = hwio.Reg8{Name: "BGP"}
	v.OBP0 = hwio.Reg8{Name: "OBP0"}
	v.OBP1 = hwio.Reg8{Name: "OBP1"}
	v.WY = hwio.Reg8{Name: "WY"}
	v.WX = hwio.Reg8{Name: "WX"}

	bus.MapReg8(0xFF40, &v.LCDC)
	bus.MapReg8(0xFF41, &v.STAT)
	bus.MapReg8(0xFF42, &v.SCY)
	bus.MapReg8(0xFF43, &v.SCX)
	bus.MapReg8(0xFF44, &v.LY)
	bus.MapReg8(0xFF45, &v.LYC)
	bus.MapReg8(0xFF47, &v.BGP)
	bus.MapReg8(0xFF48, &v.OBP0)
	bus.MapReg8(0xFF49, &v.OBP1)
	bus.MapReg8(0xFF4A, &v.WY)
	bus.MapReg8(0xFF4B, &v.WX)

	v.vramDev = hwio.Device{
		Name:    "vram",
		Size:    0x2000,
		ReadCb:  v.readVRAM,
		PeekCb:  v.peekVRAM,
		WriteCb: v.writeVRAM,
	}
	v.oamDev = hwio.Device{
		Name:    "oam",
		Size:    len(v.OAM),
		ReadCb:  v.readOAM,
		PeekCb:  func(addr uint16) uint8 { return v.OAM[addr-0xFE00] },
		WriteCb: v.writeOAM,
	}
	bus.MapDevice(0x8000, &v.vramDev)
	bus.MapDevice(0xFE00, &v.oamDev)

	if !v.cgb {
		bus.MapRange(0xFF4F, 0xFF4F, hwio.OpenBus)
		bus.MapRange(0xFF68, 0xFF6B, hwio.OpenBus)
		return
	}

	v.VBK = hwio.Reg8{Name: "VBK", RoMask: 0xFE, Unused: 0xFE}
	v.BCPS = hwio.Reg8{Name: "BCPS", Unused: 0x40}
	v.BCPD = hwio.Reg8{
		Name:    "BCPD",
		ReadCb:  func(uint8) uint8 { return v.BGPal[v.BCPS.Value&0x3F] },
		PeekCb:  func(uint8) uint8 { return v.BGPal[v.BCPS.Value&0x3F] },
		WriteCb: func(_, val uint8) { writePalette(&v.BGPal, &v.BCPS, val) },
	}
	v.OCPS = hwio.Reg8{Name: "OCPS", Unused: 0x40}
	v.OCPD = hwio.Reg8{
		Name:    "OCPD",
		ReadCb:  func(uint8) uint8 { return v.OBJPal[v.OCPS.Value&0x3F] },
		PeekCb:  func(uint8) uint8 { return v.OBJPal[v.OCPS.Value&0x3F] },
		WriteCb: func(_, val uint8) { writePalette(&v.OBJPal, &v.OCPS, val) },
	}
	bus.MapReg8(0xFF4F, &v.VBK)
	bus.MapReg8(0xFF68, &v.BCPS)
	bus.MapReg8(0xFF69, &v.BCPD)
	bus.MapReg8(0xFF6A, &v.OCPS)
	bus.MapReg8(0xFF6B, &v.OCPD)
}

func writePalette(pal *[64]byte, spec *hwio.Reg8, val uint8) {
	idx := spec.Value & 0x3F
	pal[idx] = val
	if spec.Value&0x80 != 0 {
		spec.Value = spec.Value&0x80 | (idx+1)&0x3F
	}
}

// Reset puts the video unit in its post-boot state, at the start of the
// last vblank line.
func (v *Video) Reset() {
	v.LCDC.Value = 0x91
	v.STAT.Value = ModeVBlank
	v.SCY.Value = 0
	v.SCX.Value = 0
	v.LY.Value = 0x99
	v.LYC.Value = 0
	v.BGP.Value = 0xFC
	v.OBP0.Value = 0xFF
	v.OBP1.Value = 0xFF
	v.WY.Value = 0
	v.WX.Value = 0
	v.VBK.Value = 0
	v.BCPS.Value = 0
	v.OCPS.Value = 0
	clear(v.VRAM[0][:])
	clear(v.VRAM[1][:])
	clear(v.OAM[:])
	for i := range v.BGPal {
		v.BGPal[i] = 0xFF
	}
	clear(v.OBJPal[:])

	v.dot = 0
	v.statLine = false
	v.frame = 0
}

func (v *Video) enabled() bool { return v.LCDC.Value&0x80 != 0 }

// Mode returns the current LCD mode.
func (v *Video) Mode() uint8 { return v.STAT.Value & 0x03 }

// Frame returns the number of frames completed since reset, it's incremented
// at the start of each VBlank.
func (v *Video) Frame() uint64 { return v.frame }

// Dot returns the position within the current line.
func (v *Video) Dot() int { return v.dot }

func (v *Video) setMode(mode uint8) {
	v.STAT.Value = v.STAT.Value&^0x03 | mode
}

// Cycle advances the video unit by n dots.
func (v *Video) Cycle(n int) {
	if !v.enabled() {
		return
	}
	for n > 0 {
		until := v.untilEvent()
		step := min(n, until)
		v.dot += step
		n -= step
		if step == until {
			v.event()
		}
	}
}

// untilEvent returns the number of dots until the next mode change.
func (v *Video) untilEvent() int {
	switch v.Mode() {
	case ModeOAMScan:
		return mode2End - v.dot
	case ModeDrawing:
		return mode3End - v.dot
	}
	return DotsPerLine - v.dot
}

func (v *Video) event() {
	switch v.Mode() {
	case ModeOAMScan:
		v.setMode(ModeDrawing)
	case ModeDrawing:
		v.setMode(ModeHBlank)
		if v.HBlank != nil {
			v.HBlank()
		}
	default:
		v.nextLine()
	}
	v.updateStat()
}

func (v *Video) nextLine() {
	v.dot = 0
	ly := v.LY.Value + 1
	switch {
	case ly == visibleLines:
		v.setMode(ModeVBlank)
		v.irq.Raise(IntVBlank)
		v.frame++
		log.ModVideo.DebugZ("vblank").Uint64("frame", v.frame).End()
	case ly == LinesPerFrame:
		ly = 0
		v.setMode(ModeOAMScan)
	case ly < visibleLines:
		v.setMode(ModeOAMScan)
	}
	v.LY.Value = ly
}

// updateStat refreshes the coincidence flag and raises the STAT interrupt
// on a rising edge of the combined interrupt line.
func (v *Video) updateStat() {
	stat := v.STAT.Value
	hwio.SetBitTo8(&stat, 2, v.LY.Value == v.LYC.Value)
	v.STAT.Value = stat

	mode := stat & 0x03
	line := v.enabled() &&
		(stat&0x44 == 0x44 ||
			stat&0x08 != 0 && mode == ModeHBlank ||
			stat&0x10 != 0 && mode == ModeVBlank ||
			stat&0x20 != 0 && mode == ModeOAMScan)

	if line && !v.statLine {
		v.irq.Raise(IntLCDStat)
	}
	v.statLine = line
}

func (v *Video) writeLCDC(old, val uint8) {
	switch {
	case old&0x80 != 0 && val&0x80 == 0:
		log.ModVideo.DebugZ("lcd off").Hex8("ly", v.LY.Value).End()
		v.dot = 0
		v.LY.Value = 0
		v.setMode(ModeHBlank)
		v.updateStat()
	case old&0x80 == 0 && val&0x80 != 0:
		log.ModVideo.DebugZ("lcd on").End()
		v.dot = 0
		v.LY.Value = 0
		v.setMode(ModeOAMScan)
		v.updateStat()
	}
}

func (v *Video) writeStatOrLYC(_, _ uint8) {
	v.updateStat()
}

func (v *Video) vramBank() int {
	if v.cgb {
		return int(v.VBK.Value & 1)
	}
	return 0
}

func (v *Video) vramBlocked() bool {
	return v.enabled() && v.Mode() == ModeDrawing
}

func (v *Video) oamBlocked() bool {
	mode := v.Mode()
	return v.enabled() && (mode == ModeOAMScan || mode == ModeDrawing)
}

func (v *Video) readVRAM(addr uint16) uint8 {
	if v.vramBlocked() {
		return 0xFF
	}
	return v.VRAM[v.vramBank()][addr&0x1FFF]
}

func (v *Video) peekVRAM(addr uint16) uint8 {
	return v.VRAM[v.vramBank()][addr&0x1FFF]
}

func (v *Video) writeVRAM(addr uint16, val uint8) {
	if v.vramBlocked() {
		return
	}
	v.VRAM[v.vramBank()][addr&0x1FFF] = val
}

// WriteVRAMDirect writes to the selected VRAM bank regardless of the LCD
// mode, as HDMA does.
func (v *Video) WriteVRAMDirect(addr uint16, val uint8) {
	v.VRAM[v.vramBank()][addr&0x1FFF] = val
}

func (v *Video) readOAM(addr uint16) uint8 {
	if v.oamBlocked() {
		return 0xFF
	}
	return v.OAM[addr-0xFE00]
}

func (v *Video) writeOAM(addr uint16, val uint8) {
	if v.oamBlocked() {
		return
	}
	v.OAM[addr-0xFE00] = val
}

func (v *Video) Save(s *snapshot.State) {
	for _, r := range v.regs() {
		s.Write8(r.Value)
	}
	s.WriteBytes(v.VRAM[0][:])
	s.WriteBytes(v.VRAM[1][:])
	s.WriteBytes(v.OAM[:])
	s.WriteBytes(v.BGPal[:])
	s.WriteBytes(v.OBJPal[:])
	s.Write16(uint16(v.dot))
	s.WriteBool(v.statLine)
	s.Write64(v.frame)
}

func (v *Video) Load(s *snapshot.State) {
	for _, r := range v.regs() {
		r.Value = s.Read8()
	}
	s.ReadBytes(v.VRAM[0][:])
	s.ReadBytes(v.VRAM[1][:])
	s.ReadBytes(v.OAM[:])
	s.ReadBytes(v.BGPal[:])
	s.ReadBytes(v.OBJPal[:])
	v.dot = int(s.Read16())
	v.statLine = s.ReadBool()
	v.frame = s.Read64()
}

func (v *Video) regs() []*hwio.Reg8 {
	return []*hwio.Reg8{
		&v.LCDC, &v.STAT, &v.SCY, &v.SCX, &v.LY, &v.LYC, &v.BGP, &v.OBP0,
		&v.OBP1, &v.WY, &v.WX, &v.VBK, &v.BCPS, &v.OCPS,
	}
}
